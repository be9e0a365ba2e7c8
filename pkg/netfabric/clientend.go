package netfabric

// callResult is the single value ever written to a reply sink: either
// the reply bytes or the terminal error, never both.
type callResult struct {
	reply []byte
	err   error
}

// rpcEnvelope is immutable once enqueued into the network's ingress.
// sink has capacity 1; exactly one processor write happens per
// envelope, or none if the caller already stopped reading.
type rpcEnvelope struct {
	endName string
	fqName  string
	req     []byte
	sink    chan callResult
	reqID   string // correlation id for log lines, see newRequestID
}

// ClientEnd is the caller-side handle returned by Network.CreateEnd. It
// is safe for concurrent use: every Call allocates its own envelope and
// sink.
type ClientEnd struct {
	name string
	net  *Network
}

// Name returns the endpoint's registered name.
func (c *ClientEnd) Name() string { return c.name }

// Call submits a request under fqName and blocks for the outcome. It
// never applies its own timeout: the fabric guarantees a bounded-time
// answer (or a closed sink) under the active policy.
func (c *ClientEnd) Call(fqName string, req []byte) ([]byte, error) {
	sink := make(chan callResult, 1)
	env := rpcEnvelope{
		endName: c.name,
		fqName:  fqName,
		req:     req,
		sink:    sink,
		reqID:   newRequestID(),
	}

	if err := c.net.submit(env); err != nil {
		return nil, err
	}

	res, ok := <-sink
	if !ok {
		return nil, ErrRecv
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.reply, nil
}
