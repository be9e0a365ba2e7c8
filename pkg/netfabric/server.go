package netfabric

import (
	"strings"
	"sync/atomic"
)

// HandlerFunc is a registered service method. It must be safe to invoke
// concurrently from any worker goroutine.
type HandlerFunc func(req []byte) ([]byte, error)

// serverIDAlloc is the process-wide monotonic id source. Identity for
// liveness purposes is (name, id): re-adding a server under the same
// name allocates a fresh id here and invalidates any processor still
// holding the old *Server.
var serverIDAlloc atomic.Uint64

func nextServerID() uint64 {
	return serverIDAlloc.Add(1)
}

// Server is an immutable (after Build) collection of handlers mounted
// under a name. Count grows with every dispatch attempt, including
// attempts against an unregistered fq_name.
type Server struct {
	name     string
	id       uint64
	handlers map[string]HandlerFunc
	count    atomic.Uint64
}

// Name returns the server's mount name.
func (s *Server) Name() string { return s.name }

// ID returns the server's process-unique incarnation id.
func (s *Server) ID() uint64 { return s.id }

// Count returns the number of dispatch attempts this incarnation has
// served, successful or not.
func (s *Server) Count() uint64 { return s.count.Load() }

// Dispatch looks fqName ("service.method") up verbatim and invokes the
// handler directly, bypassing the network entirely — useful for unit
// testing handlers in isolation. The fabric's own processor calls this
// same method. The counter increments unconditionally, even on a miss —
// tests rely on this to distinguish "never reached the server" from
// "reached the server, no such method".
func (s *Server) Dispatch(fqName string, req []byte) ([]byte, error) {
	s.count.Add(1)
	h, ok := s.handlers[fqName]
	if !ok {
		return nil, unimplementedErr(fqName)
	}
	return h(req)
}

// ServerBuilder accumulates handlers before a Server is sealed. Two
// registration shapes are equally valid in the fabric's source lineage —
// flat "service.method" strings, or "service" name plus an object that
// dispatches on the method tail — and this builder supports the flat
// form directly while FQName stays the standard way to spell a key.
type ServerBuilder struct {
	name     string
	handlers map[string]HandlerFunc
}

// NewServerBuilder starts a builder for a server to be mounted under
// name.
func NewServerBuilder(name string) *ServerBuilder {
	return &ServerBuilder{
		name:     name,
		handlers: make(map[string]HandlerFunc),
	}
}

// FQName joins a service name and method name the way the fabric routes
// requests: "service.method".
func FQName(service, method string) string {
	return service + "." + method
}

// AddHandler registers h under the fully-qualified "service.method" key
// fqName, overwriting any prior registration under the same key.
func (b *ServerBuilder) AddHandler(fqName string, h HandlerFunc) *ServerBuilder {
	b.handlers[fqName] = h
	return b
}

// AddService registers every method of a service object keyed under
// "service.method", for callers that prefer the nested-service shape
// named in the fabric's design notes. It is a thin reduction onto
// AddHandler and carries no additional semantics.
func (b *ServerBuilder) AddService(service string, methods map[string]HandlerFunc) *ServerBuilder {
	for method, h := range methods {
		b.AddHandler(FQName(service, method), h)
	}
	return b
}

// Build seals the accumulated handlers into an immutable *Server and
// allocates its process-unique incarnation id.
func (b *ServerBuilder) Build() *Server {
	return &Server{
		name:     b.name,
		id:       nextServerID(),
		handlers: b.handlers,
	}
}

// splitFQName is a convenience for handler implementations that prefer
// to dispatch on the method tail themselves (the nested-service shape).
// It is not used by Server.Dispatch, which matches fqName verbatim.
func splitFQName(fqName string) (service, method string) {
	i := strings.IndexByte(fqName, '.')
	if i < 0 {
		return fqName, ""
	}
	return fqName[:i], fqName[i+1:]
}
