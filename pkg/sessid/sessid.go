// Package sessid generates and validates opaque session identifiers.
//
// Identifiers are ULIDs with a fixed prefix, lowercase for transport
// friendliness: sess ids sort roughly by creation time while remaining
// unguessable (80 bits of entropy per id).
package sessid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix is the prefix shared by all session IDs.
const Prefix = "sks-"

// Length is the total length of a session ID: prefix (4) + ULID (26).
const Length = 30

// Generator produces unique opaque session identifiers.
//
// Implementations must not return the same id twice within the lifetime
// of the process.
type Generator interface {
	NewID() string
}

// ULIDGenerator generates session IDs backed by monotonic ULIDs.
// It is safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator creates a ULID-backed session ID generator seeded with
// crypto/rand entropy.
func NewGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewID returns a fresh session ID in the form sks-{ulid_lowercase}.
func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
	return Prefix + strings.ToLower(id.String())
}

// IsValid checks if a string is a well-formed session ID.
// It normalizes the ID to lowercase before validation.
func IsValid(id string) bool {
	id = strings.ToLower(id)

	if !strings.HasPrefix(id, Prefix) {
		return false
	}
	if len(id) != Length {
		return false
	}

	// ulid.Parse accepts bytes outside Crockford base32; strict parsing
	// rejects them.
	_, err := ulid.ParseStrict(strings.ToUpper(id[len(Prefix):]))
	return err == nil
}

// Normalize normalizes a session ID to lowercase.
// Returns the empty string if the ID is not well-formed.
func Normalize(id string) string {
	normalized := strings.ToLower(id)
	if !IsValid(normalized) {
		return ""
	}
	return normalized
}
