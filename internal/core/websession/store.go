package websession

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/sesskeep-go/internal/core/domain"
	"github.com/yndnr/sesskeep-go/pkg/cmap"
	"github.com/yndnr/sesskeep-go/pkg/sessid"
)

// DefaultMaxIdleTime is the idle timeout applied to new sessions unless
// overridden.
const DefaultMaxIdleTime = 30 * time.Minute

// IDGenerator produces unique opaque session identifiers.
type IDGenerator interface {
	NewID() string
}

// Recorder receives store lifecycle events, typically to feed metrics.
// All methods must be cheap and non-blocking.
type Recorder interface {
	// SessionCreated is called for every Create.
	SessionCreated()

	// SessionExpired is called once per entity evicted for expiry,
	// whether by the sweep or by the per-lookup check.
	SessionExpired()

	// SweepCompleted is called after a sweep pass finishes.
	SweepCompleted(duration time.Duration, evicted int)

	// SweepContended is called when a sweep attempt found another sweep
	// in progress and returned immediately.
	SweepContended()
}

// nopRecorder is used when no Recorder is configured.
type nopRecorder struct{}

func (nopRecorder) SessionCreated() {}

func (nopRecorder) SessionExpired() {}

func (nopRecorder) SweepCompleted(_ time.Duration, _ int) {}

func (nopRecorder) SweepContended() {}

// Store is a concurrent registry of session entities keyed by opaque id.
//
// All operations are safe to call concurrently without external
// locking. No operation blocks on another caller; the sweeper's guard
// is try-acquire only.
type Store struct {
	sessions *cmap.Map[*Session]
	checker  *expiryChecker

	clock atomic.Value // clockHolder
	idgen IDGenerator

	defaultMaxIdle time.Duration
	log            *slog.Logger
	rec            Recorder
}

// clockHolder wraps the clock so the atomic.Value always holds one
// concrete type regardless of the Clock implementation.
type clockHolder struct {
	c Clock
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source. A nil clock makes New fail.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c == nil {
			s.clock = atomic.Value{} // rejected in New
			return
		}
		s.clock.Store(clockHolder{c})
	}
}

// WithIDGenerator sets the id generator used for new and rekeyed
// sessions.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.idgen = g }
}

// WithMaxIdleTime sets the default idle timeout for new sessions.
// A negative value disables idle expiry by default.
func WithMaxIdleTime(d time.Duration) Option {
	return func(s *Store) { s.defaultMaxIdle = d }
}

// WithSweepPeriod sets the time-based sweep trigger period.
func WithSweepPeriod(d time.Duration) Option {
	return func(s *Store) { s.checker.period = d }
}

// WithSweepCountThreshold sets the creation-burst sweep trigger: a
// sweep runs once more than this many entries were added since the
// last sweep.
func WithSweepCountThreshold(n int) Option {
	return func(s *Store) { s.checker.countThreshold = n }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithRecorder sets the stats recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.rec = r }
}

// New creates a session store.
//
// Configuration errors (nil clock, non-positive sweep tuning) are
// rejected here rather than deferred to first use.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		sessions:       cmap.New[*Session](),
		idgen:          sessid.NewGenerator(),
		defaultMaxIdle: DefaultMaxIdleTime,
		log:            slog.Default(),
		rec:            nopRecorder{},
	}
	s.checker = newExpiryChecker(s)
	s.clock.Store(clockHolder{SystemClock()})

	for _, opt := range opts {
		opt(s)
	}

	if s.clock.Load() == nil {
		return nil, domain.ErrNilClock
	}
	if s.checker.period <= 0 {
		return nil, domain.ErrInvalidConfig.WithDetails("sweep period must be positive")
	}
	if s.checker.countThreshold <= 0 {
		return nil, domain.ErrInvalidConfig.WithDetails("sweep count threshold must be positive")
	}
	if s.idgen == nil {
		return nil, domain.ErrInvalidConfig.WithDetails("id generator is required")
	}

	s.checker.reset(s.now())
	return s, nil
}

// now reads the current instant from the configured clock.
func (s *Store) now() time.Time {
	return s.clock.Load().(clockHolder).c.Now()
}

// Clock returns the configured time source.
func (s *Store) Clock() Clock {
	return s.clock.Load().(clockHolder).c
}

// SetClock replaces the time source and immediately re-evaluates
// expiration against the new reference. Useful to simulate expiry in
// tests by moving the clock backward or forward.
func (s *Store) SetClock(c Clock) error {
	if c == nil {
		return domain.ErrNilClock
	}
	s.clock.Store(clockHolder{c})
	s.checker.sweep(c.Now())
	return nil
}

// Create returns a new, unregistered session with the creation time
// fixed at the current instant. The session is not retrievable until
// Save is called on it.
func (s *Store) Create() *Session {
	now := s.now()
	s.checker.checkIfNecessary(now)

	sess := newSession(s, s.idgen.NewID(), now, s.defaultMaxIdle)
	s.rec.SessionCreated()
	return sess
}

// Retrieve looks up a session by id. Absence is a normal outcome, not
// an error: the second return is false when the id is unknown or the
// session turned out to be expired. An expired session found here is
// evicted on the spot — this per-lookup check is the correctness
// backstop independent of the sweep's cadence.
//
// On a hit, the session's last access time is updated to the current
// instant.
func (s *Store) Retrieve(id string) (*Session, bool) {
	now := s.now()
	s.checker.checkIfNecessary(now)

	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	if sess.expired(now) {
		s.evict(id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Remove deletes the mapping for id if present. Removing an absent id
// is a no-op.
func (s *Store) Remove(id string) {
	s.sessions.Delete(id)
}

// Touch updates the last access time of a session obtained from this
// store. Passing a session produced by a different store (or nil) is a
// contract violation and returns ErrForeignSession.
func (s *Store) Touch(sess *Session) error {
	if sess == nil || sess.store != s {
		return domain.ErrForeignSession
	}
	sess.touch(s.now())
	return nil
}

// Count returns the number of registered sessions.
func (s *Store) Count() int {
	return s.sessions.Count()
}

// Sweep forces an expiration sweep at the current instant, subject to
// the same non-blocking guard as triggered sweeps.
func (s *Store) Sweep() {
	s.checker.sweep(s.now())
}

// evict removes an expired session from the registry and applies the
// invalidation side effects. Pop guarantees the removal happens exactly
// once even when the sweep and a retrieval race on the same id.
func (s *Store) evict(id string) bool {
	sess, ok := s.sessions.Pop(id)
	if !ok {
		return false
	}
	sess.state.Store(int32(StateExpired))
	sess.attrs.Clear()
	s.rec.SessionExpired()
	s.log.Debug("session expired", "session_id", id)
	return true
}
