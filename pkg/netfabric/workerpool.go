package netfabric

import (
	"runtime"

	"github.com/gammazero/workerpool"
)

// defaultWorkerMultiplier and minWorkerFloor oversize the pool relative
// to GOMAXPROCS because a processor spends real wall-clock time in
// time.Sleep while holding its slot: a literal one-slot-per-core pool
// would serialize hundreds of concurrent, sleeping calls behind a
// handful of workers. The floor keeps the pool comfortably above the
// largest concurrent workload this fabric is exercised with even when
// GOMAXPROCS is small (e.g. a single-core CI container).
const (
	defaultWorkerMultiplier = 4
	minWorkerFloor          = 512
)

func defaultWorkerCount() int {
	n := runtime.GOMAXPROCS(0) * defaultWorkerMultiplier
	if n < minWorkerFloor {
		n = minWorkerFloor
	}
	return n
}

// procPool runs one task per accepted envelope. It is a thin rename
// over workerpool.WorkerPool so the rest of this package depends on a
// package-local name rather than the third-party type directly.
type procPool struct {
	wp *workerpool.WorkerPool
}

func newProcPool(size int) *procPool {
	if size < 1 {
		size = defaultWorkerCount()
	}
	return &procPool{wp: workerpool.New(size)}
}

// submit hands task to the pool. It never blocks the dispatcher on
// handler execution: the pool queues task internally when every worker
// is busy.
func (p *procPool) submit(task func()) {
	p.wp.Submit(task)
}

// stopWait stops accepting new tasks and waits for queued and running
// ones to finish.
func (p *procPool) stopWait() {
	p.wp.StopWait()
}
