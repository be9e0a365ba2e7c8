// Package netfabric implements an in-process RPC fabric for
// stress-testing distributed algorithms — consensus implementations,
// replicated key-value stores — against adverse network conditions.
//
// A Network hosts named Servers (collections of handlers keyed by
// "service.method") and ClientEnds (caller-side handles). Every Call
// passes through a single ingress queue and a per-request processor
// that samples the current reliability/reordering/enablement policy and
// decides, in a fixed order, whether the request is dropped, delayed,
// dispatched, reordered, or answered normally.
package netfabric
