package netfabric

import (
	"math/rand/v2"
	"time"
)

// newProcessorRNG returns a per-processor RNG seeded independently of
// every other processor's. Seeding each one off the package's
// concurrency-safe global source avoids a shared mutex-guarded
// generator becoming a contention point under hundreds of concurrent
// calls.
func newProcessorRNG() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// runProcessor is the per-envelope state machine: it decides, for one
// enqueued call, whether the target is reachable, whether the request
// or its reply is dropped, and whether the reply is reordered. The
// draw order below is fixed: short_delay, request_drop, reply_drop,
// long_reordering. A draw whose policy gate is off is not taken, and
// the request-drop branch returns before the later draws are made.
func (n *Network) runProcessor(env rpcEnvelope) {
	n.totalCount.Add(1)
	n.metrics.acceptEnvelope()

	snap := n.registry.snapshot(env.endName, n.reliable.Load(), n.longReordering.Load())
	rng := newProcessorRNG()

	log := n.log.processorEvent(env.reqID, env.endName, env.fqName)

	if !snap.enabled || snap.server == nil {
		ms := n.caseATimeoutDelay(rng)
		log.Dur("delay", ms).Msg("no live server, synthesizing timeout")
		time.Sleep(ms)
		n.reply(env, nil, ErrTimeout)
		return
	}

	reliable := snap.reliable

	var shortDelay time.Duration
	if !reliable {
		shortDelay = time.Duration(rng.Int64N(27)) * time.Millisecond
	}

	if !reliable && rng.IntN(1000) < 100 {
		// Request dropped before it ever reaches the server. The short
		// delay is still paid before reporting the timeout.
		time.Sleep(shortDelay)
		n.reply(env, nil, ErrTimeout)
		return
	}

	dropReply := !reliable && rng.IntN(1000) < 100

	var reorderDelay time.Duration
	hasReorder := false
	if snap.longReordering && rng.IntN(900) < 600 {
		upper := 1 + rng.IntN(2000) // uniform in [1, 2001)
		extra := rng.IntN(upper)    // uniform in [0, upper)
		reorderDelay = time.Duration(200+extra) * time.Millisecond
		hasReorder = true
	}

	if shortDelay > 0 {
		time.Sleep(shortDelay)
	}

	srv := snap.server
	buf, err := srv.Dispatch(env.fqName, env.req)
	n.metrics.recordDispatch(srv.name)

	if err != nil {
		n.reply(env, nil, err)
		return
	}

	if n.registry.isServerDead(env.endName, srv.name, srv.id) {
		log.Msg("server retired or rebound mid-flight, suppressing reply")
		n.reply(env, nil, ErrTimeout)
		return
	}

	if dropReply {
		n.reply(env, nil, ErrTimeout)
		return
	}

	if hasReorder {
		time.Sleep(reorderDelay)
	}
	n.reply(env, buf, nil)
}

// caseATimeoutDelay draws the timeout duration for a disabled endpoint
// or one with no mounted server.
func (n *Network) caseATimeoutDelay(rng *rand.Rand) time.Duration {
	if n.longDelays.Load() {
		return time.Duration(rng.IntN(7000)) * time.Millisecond
	}
	return time.Duration(rng.IntN(100)) * time.Millisecond
}

// reply writes the terminal result to env's sink. The sink is buffered
// to capacity 1, so this never blocks even if the caller already gave
// up reading; an abandoned sink is simply garbage collected.
func (n *Network) reply(env rpcEnvelope, buf []byte, err error) {
	env.sink <- callResult{reply: buf, err: err}
}
