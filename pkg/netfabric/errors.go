package netfabric

import (
	"fmt"
)

// Kind is a closed taxonomy of the failures a Call can observe. Every
// fabric-injected failure collapses to KindTimeout so that a caller can
// never distinguish a disabled endpoint from a dropped reply from a
// rebound server — see FabricError.
type Kind int

const (
	// KindEncode means the caller's request could not be serialized.
	KindEncode Kind = iota
	// KindDecode means a reply could not be deserialized.
	KindDecode
	// KindUnimplemented means no handler is registered for the fq_name.
	KindUnimplemented
	// KindTimeout covers every fabric-synthesized non-delivery: disabled
	// endpoint, missing/retired server, request drop, reply drop, and
	// server rebind observed after dispatch.
	KindTimeout
	// KindRecv means the reply sink was closed without a value. Should
	// not occur in practice; surfaces a processor bug if it does.
	KindRecv
	// KindStopped means the network's ingress is closed.
	KindStopped
)

func (k Kind) String() string {
	switch k {
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	case KindUnimplemented:
		return "unimplemented"
	case KindTimeout:
		return "timeout"
	case KindRecv:
		return "recv"
	case KindStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FabricError is the error type surfaced to ClientEnd.Call for every
// failure the fabric itself decides (as opposed to an error returned
// verbatim from a handler).
type FabricError struct {
	Kind Kind
	Msg  string
}

func (e *FabricError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is allows errors.Is(err, ErrTimeout) to match any KindTimeout
// FabricError regardless of message.
func (e *FabricError) Is(target error) bool {
	t, ok := target.(*FabricError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newFabricError(kind Kind, msg string) *FabricError {
	return &FabricError{Kind: kind, Msg: msg}
}

// Sentinel instances for errors.Is comparisons; message is irrelevant
// to Is() but kept informative for direct %v formatting.
var (
	ErrEncode        = &FabricError{Kind: KindEncode, Msg: "could not encode request"}
	ErrDecode        = &FabricError{Kind: KindDecode, Msg: "could not decode reply"}
	ErrUnimplemented = &FabricError{Kind: KindUnimplemented, Msg: "no handler registered"}
	ErrTimeout       = &FabricError{Kind: KindTimeout, Msg: "no reply before synthesized timeout"}
	ErrRecv          = &FabricError{Kind: KindRecv, Msg: "reply sink closed without a value"}
	ErrStopped       = &FabricError{Kind: KindStopped, Msg: "network ingress is closed"}
)

// RPCError wraps an arbitrary inner error to tag it as originating from
// the fabric, for upstream callers (e.g. a consensus layer) that want to
// distinguish "my RPC failed" from their own domain errors without
// inspecting Kind directly.
type RPCError struct {
	Inner error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc: %v", e.Inner)
}

func (e *RPCError) Unwrap() error {
	return e.Inner
}

// WrapRPC tags err as fabric-originated. A nil err returns nil.
func WrapRPC(err error) error {
	if err == nil {
		return nil
	}
	return &RPCError{Inner: err}
}

// unimplementedErr builds the miss-lookup error for Server.Dispatch.
func unimplementedErr(fqName string) error {
	return newFabricError(KindUnimplemented, fmt.Sprintf("unknown method %q", fqName))
}

// compile-time check that FabricError satisfies the errors.Is() hook
// contract used throughout this package.
var _ error = (*FabricError)(nil)
var _ interface{ Is(error) bool } = (*FabricError)(nil)
