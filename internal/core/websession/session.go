package websession

import (
	"sync/atomic"
	"time"

	"github.com/yndnr/sesskeep-go/pkg/cmap"
)

// State is the lifecycle state of a session.
type State int32

const (
	// StateNew is the initial state: created but not yet carrying data.
	StateNew State = iota

	// StateStarted means the session has been explicitly started or has
	// gained at least one attribute.
	StateStarted

	// StateExpired is terminal. An expired session is discarded, never
	// reused.
	StateExpired
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarted:
		return "started"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Session is a single session entity owned by a Store.
//
// All fields that concurrent callers can observe are held in atomic
// cells: the id (swappable via ChangeID), the last access time, the
// idle timeout, and the lifecycle state. The attribute container is a
// sharded concurrent map, so concurrent attribute mutation from
// multiple callers holding the same entity never corrupts it.
type Session struct {
	store *Store

	id    atomic.Value // string
	state atomic.Int32 // State

	attrs *cmap.Map[any]

	creationTime time.Time
	lastAccess   atomic.Int64 // UnixNano
	maxIdle      atomic.Int64 // nanoseconds; negative disables idle expiry
}

func newSession(store *Store, id string, now time.Time, maxIdle time.Duration) *Session {
	s := &Session{
		store:        store,
		attrs:        cmap.New[any](),
		creationTime: now,
	}
	s.id.Store(id)
	s.state.Store(int32(StateNew))
	s.lastAccess.Store(now.UnixNano())
	s.maxIdle.Store(int64(maxIdle))
	return s
}

// ID returns the session's current opaque identifier.
func (s *Session) ID() string {
	return s.id.Load().(string)
}

// CreationTime returns the instant the session was constructed.
func (s *Session) CreationTime() time.Time {
	return s.creationTime
}

// LastAccessTime returns the instant of the last successful retrieval
// or touch.
func (s *Session) LastAccessTime() time.Time {
	return time.Unix(0, s.lastAccess.Load()).UTC()
}

// MaxIdleTime returns the idle timeout. A negative value means idle
// expiration is disabled for this session.
func (s *Session) MaxIdleTime() time.Duration {
	return time.Duration(s.maxIdle.Load())
}

// SetMaxIdleTime sets the idle timeout. Pass a negative duration to
// disable idle expiration.
func (s *Session) SetMaxIdleTime(d time.Duration) {
	s.maxIdle.Store(int64(d))
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Start transitions the session from NEW to STARTED. It is a no-op in
// any other state.
func (s *Session) Start() {
	s.state.CompareAndSwap(int32(StateNew), int32(StateStarted))
}

// IsStarted reports whether the session is started. A session carrying
// at least one attribute counts as started even without an explicit
// Start call.
func (s *Session) IsStarted() bool {
	return s.State() == StateStarted || s.attrs.Count() > 0
}

// IsExpired reports whether the session has expired against the store's
// clock. A positive result is memoized: once expired, always expired.
func (s *Session) IsExpired() bool {
	return s.expired(s.store.now())
}

// expired is the internal expiration check against an explicit instant.
// When the idle timeout has been exceeded the state is set to EXPIRED
// as a side effect, so racing callers agree on the final state.
func (s *Session) expired(now time.Time) bool {
	if s.State() == StateExpired {
		return true
	}
	maxIdle := s.MaxIdleTime()
	if s.IsStarted() && maxIdle >= 0 && now.Add(-maxIdle).After(s.LastAccessTime()) {
		s.expire()
		return true
	}
	return false
}

// expire moves any live state to EXPIRED via compare-and-swap, so a
// racing Start cannot overwrite the terminal state.
func (s *Session) expire() {
	for {
		st := s.state.Load()
		if st == int32(StateExpired) || s.state.CompareAndSwap(st, int32(StateExpired)) {
			return
		}
	}
}

// touch sets the last access time.
func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// Save registers the session in its store under the current id, making
// it retrievable. If the session carries attributes it is promoted from
// NEW to STARTED first. Create alone does not register: a session that
// is never saved stays invisible to other callers.
func (s *Session) Save() {
	if s.attrs.Count() > 0 {
		s.state.CompareAndSwap(int32(StateNew), int32(StateStarted))
	}
	s.store.sessions.Set(s.ID(), s)
}

// Invalidate force-expires the session: the state becomes EXPIRED, all
// attributes are cleared, and the id is removed from the store. It is
// idempotent.
func (s *Session) Invalidate() {
	s.expire()
	s.attrs.Clear()
	s.store.sessions.Delete(s.ID())
}

// ChangeID atomically replaces the session's id with a freshly
// generated one: the old mapping is removed and the new one installed.
// A concurrent lookup in the brief window between remove and insert may
// legitimately miss; the swap is best-effort, not linearizable.
func (s *Session) ChangeID() string {
	old := s.ID()
	s.store.sessions.Delete(old)
	id := s.store.idgen.NewID()
	s.id.Store(id)
	s.store.sessions.Set(id, s)
	return id
}

// SetAttribute stores an attribute value under key.
func (s *Session) SetAttribute(key string, value any) {
	s.attrs.Set(key, value)
}

// Attribute retrieves an attribute value by key.
func (s *Session) Attribute(key string) (any, bool) {
	return s.attrs.Get(key)
}

// DeleteAttribute removes an attribute.
func (s *Session) DeleteAttribute(key string) {
	s.attrs.Delete(key)
}

// Attributes returns a point-in-time snapshot of all attributes.
func (s *Session) Attributes() map[string]any {
	snapshot := make(map[string]any, s.attrs.Count())
	s.attrs.Range(func(key string, value any) bool {
		snapshot[key] = value
		return true
	})
	return snapshot
}

// AttributeCount returns the number of attributes.
func (s *Session) AttributeCount() int {
	return s.attrs.Count()
}
