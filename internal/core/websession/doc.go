// Package websession implements the in-memory session store that backs
// SessKeep: a concurrent registry of short-lived session entities with
// lazy idle-timeout expiration and an opportunistic, non-blocking sweep.
//
// The package deliberately keeps the entity and its registry together:
// Save, Invalidate, and ChangeID mutate the registry through the
// entity's back-reference, mirroring the ownership model of the store.
//
// Correctness does not depend on the sweep. Every retrieval re-checks
// the individual entity's expiration, so a caller never observes a
// stale session even if the sweep has not run. The sweep exists only to
// bound memory held by abandoned sessions that are never looked up
// again.
package websession
