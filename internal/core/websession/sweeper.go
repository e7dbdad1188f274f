package websession

import (
	"sync"
	"sync/atomic"
	"time"
)

// Sweep trigger defaults.
const (
	// DefaultSweepPeriod is the maximum time between expiration sweeps.
	DefaultSweepPeriod = 60 * time.Second

	// DefaultSweepCountThreshold is the number of sessions that can be
	// created before the next sweep is forced.
	DefaultSweepCountThreshold = 500
)

// expiryChecker decides when an expiration sweep should run and
// executes it under a non-blocking guard.
//
// The trigger state (nextCheck, lastCount) is read lock-free on the
// hot path of every Create and Retrieve; it is only written by the
// sweep holder. Overlapping sweep attempts are coalesced: a caller
// that finds the guard held returns immediately and the trigger state
// stays untouched, so the next caller retries promptly.
type expiryChecker struct {
	store *Store

	period         time.Duration
	countThreshold int

	mu        sync.Mutex   // sweep body guard; TryLock only, never a blocking wait
	nextCheck atomic.Int64 // UnixNano of the next time-based trigger
	lastCount atomic.Int64 // registry size observed at the end of the last sweep
}

func newExpiryChecker(store *Store) *expiryChecker {
	return &expiryChecker{
		store:          store,
		period:         DefaultSweepPeriod,
		countThreshold: DefaultSweepCountThreshold,
	}
}

// reset primes the trigger state at store construction time.
func (c *expiryChecker) reset(now time.Time) {
	c.nextCheck.Store(now.Add(c.period).UnixNano())
	c.lastCount.Store(int64(c.store.sessions.Count()))
}

// checkIfNecessary runs a sweep when either trigger fires: more than
// countThreshold sessions created since the last sweep, or the check
// period elapsed.
func (c *expiryChecker) checkIfNecessary(now time.Time) {
	created := int64(c.store.sessions.Count()) - c.lastCount.Load()
	if created > int64(c.countThreshold) || c.nextCheck.Load() < now.UnixNano() {
		c.sweep(now)
	}
}

// sweep scans the registry and evicts every session expired at now.
//
// It is advisory and best-effort: at most one sweep runs at a time, and
// a caller that cannot acquire the guard returns without waiting so
// request processing never stalls on maintenance work.
func (c *expiryChecker) sweep(now time.Time) {
	if c.store.sessions.Count() == 0 {
		return
	}
	if !c.mu.TryLock() {
		c.store.rec.SweepContended()
		return
	}

	start := time.Now()
	evicted := 0
	defer func() {
		// Trigger state is reset whenever the guard was held, even if
		// the scan panicked, so triggers cannot wedge permanently.
		c.nextCheck.Store(c.store.now().Add(c.period).UnixNano())
		c.lastCount.Store(int64(c.store.sessions.Count()))
		c.mu.Unlock()
		c.store.rec.SweepCompleted(time.Since(start), evicted)
	}()

	// Collect first, then evict: eviction takes shard write locks that
	// must not be acquired while Range holds the shard read lock.
	var expired []string
	c.store.sessions.Range(func(id string, sess *Session) bool {
		if sess.expired(now) {
			expired = append(expired, id)
		}
		return true
	})

	for _, id := range expired {
		if c.store.evict(id) {
			evicted++
		}
	}

	if evicted > 0 {
		c.store.log.Debug("expiration sweep completed",
			"evicted", evicted,
			"remaining", c.store.sessions.Count(),
		)
	}
}
