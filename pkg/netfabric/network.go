package netfabric

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Network is the fabric: the single component that owns the ingress
// queue, the endpoint registry, the policy knobs, and the processor
// pool. The zero value is not usable; construct with NewNetwork.
type Network struct {
	registry *registry

	reliable       atomic.Bool
	longDelays     atomic.Bool
	longReordering atomic.Bool

	totalCount atomic.Uint64

	queue *ingressQueue
	pool  *procPool

	metrics *fabricMetrics
	log     *logger

	wg       sync.WaitGroup
	eg       errgroup.Group
	stopOnce sync.Once
	stopped  atomic.Bool
}

// NewNetwork constructs a Network, reliable by default (matching the
// fabric's source lineage, where tests must opt into unreliability),
// and starts its dispatcher goroutine.
func NewNetwork(opts ...Option) *Network {
	cfg := defaultNetworkConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	n := &Network{
		registry: newRegistry(),
		queue:    newIngressQueue(),
		pool:     newProcPool(cfg.workers),
		metrics:  newFabricMetrics(cfg.registerer, cfg.name),
		log:      newLogger(cfg.logger),
	}
	n.reliable.Store(true)

	n.eg.Go(func() error {
		n.runDispatcher()
		return nil
	})

	return n
}

// runDispatcher drains the ingress queue forever, handing each envelope
// to the processor pool. It never itself blocks on handler execution.
func (n *Network) runDispatcher() {
	for {
		env, ok := n.queue.pop()
		if !ok {
			return
		}
		n.wg.Add(1)
		n.pool.submit(func() {
			defer n.wg.Done()
			n.runProcessor(env)
		})
	}
}

// submit pushes env into the ingress queue, failing with ErrStopped if
// the network has been stopped.
func (n *Network) submit(env rpcEnvelope) error {
	return n.queue.push(env)
}

// AddServer mounts s, replacing any prior server — live or tombstoned —
// registered under the same name. Any processor still holding the old
// *Server observes the id change via isServerDead and answers Timeout.
// AddServer does not allocate an id itself (ServerBuilder.Build does):
// mounting the same *Server again keeps its id, so a processor holding
// that *Server does not observe a rebind.
func (n *Network) AddServer(s *Server) {
	n.registry.addServer(s)
}

// DeleteServer tombstones name. Existing *Server references already
// captured by in-flight processors are unaffected directly; the
// liveness check (run after their handler returns) is what makes the
// retirement observable.
func (n *Network) DeleteServer(name string) {
	n.registry.deleteServer(name)
}

// CreateEnd registers a new endpoint, disabled and unconnected, and
// returns the caller-side handle for it.
func (n *Network) CreateEnd(name string) *ClientEnd {
	n.registry.createEnd(name)
	return &ClientEnd{name: name, net: n}
}

// Connect points endName's traffic at serverName. May be called more
// than once for the same endpoint; a later call simply overwrites the
// earlier connection, it is not treated as an error.
func (n *Network) Connect(endName, serverName string) {
	n.registry.connect(endName, serverName)
}

// Enable flips endName's gate. Repeated identical calls are idempotent.
func (n *Network) Enable(endName string, flag bool) {
	n.registry.enable(endName, flag)
}

// SetReliable toggles the reliable/unreliable policy knob.
func (n *Network) SetReliable(b bool) { n.reliable.Store(b) }

// SetLongReordering toggles the long-reordering policy knob.
func (n *Network) SetLongReordering(b bool) { n.longReordering.Store(b) }

// SetLongDelays toggles the long-delays policy knob.
func (n *Network) SetLongDelays(b bool) { n.longDelays.Store(b) }

// Count returns the named server's dispatch counter. Panics if the name
// was never registered.
func (n *Network) Count(serverName string) uint64 {
	return n.registry.count(serverName)
}

// TotalCount returns the number of envelopes accepted into the fabric,
// network-wide, before any drop decision.
func (n *Network) TotalCount() uint64 {
	return n.totalCount.Load()
}

// Stop closes the ingress to new submissions, lets already-queued and
// in-flight processors finish, and returns once the dispatcher and
// worker pool have drained or ctx is done, whichever comes first.
func (n *Network) Stop(ctx context.Context) error {
	var stopErr error
	n.stopOnce.Do(func() {
		n.stopped.Store(true)
		n.queue.close()

		done := make(chan struct{})
		go func() {
			_ = n.eg.Wait() // dispatcher exits once the queue is drained
			n.wg.Wait()     // all submitted processor tasks have returned
			n.pool.stopWait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
	})
	return stopErr
}
