package netfabric

import "github.com/google/uuid"

// newRequestID mints a short correlation id attached to every envelope,
// so a single Call's processor log lines (a synthesized timeout, a reply
// suppressed after a retire/rebind) carry the id of the Call. Modeled
// on the short uuid-derived request ids used elsewhere in the retrieval
// pack for per-call tracing.
func newRequestID() string {
	return uuid.New().String()[:8]
}
