package websession

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/sesskeep-go/pkg/sessid"
)

// testEpoch is an arbitrary fixed starting instant for manual clocks.
var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// newTestStore creates a store on a manual clock for deterministic
// expiry tests.
func newTestStore(t *testing.T, opts ...Option) (*Store, *ManualClock) {
	t.Helper()
	clk := NewManualClock(testEpoch)
	store, err := New(append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store, clk
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNew, "new"},
		{StateStarted, "started"},
		{StateExpired, "expired"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()

	if !strings.HasPrefix(sess.ID(), sessid.Prefix) {
		t.Errorf("ID = %q, want %q prefix", sess.ID(), sessid.Prefix)
	}
	if got := sess.State(); got != StateNew {
		t.Errorf("State() = %v, want %v", got, StateNew)
	}
	if got := sess.MaxIdleTime(); got != DefaultMaxIdleTime {
		t.Errorf("MaxIdleTime() = %v, want %v", got, DefaultMaxIdleTime)
	}
	if !sess.CreationTime().Equal(testEpoch) {
		t.Errorf("CreationTime() = %v, want %v", sess.CreationTime(), testEpoch)
	}
	if !sess.LastAccessTime().Equal(sess.CreationTime()) {
		t.Error("LastAccessTime should equal CreationTime initially")
	}
	if sess.IsStarted() {
		t.Error("a fresh session should not be started")
	}
}

func TestStart(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()

	sess.Start()
	if got := sess.State(); got != StateStarted {
		t.Errorf("State() after Start = %v, want %v", got, StateStarted)
	}

	// Start is a no-op outside NEW.
	sess.Start()
	if got := sess.State(); got != StateStarted {
		t.Errorf("State() after second Start = %v, want %v", got, StateStarted)
	}

	sess.Invalidate()
	sess.Start()
	if got := sess.State(); got != StateExpired {
		t.Errorf("Start should not resurrect an expired session, state = %v", got)
	}
}

func TestIsStartedViaAttributes(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()

	if sess.IsStarted() {
		t.Fatal("session should not be started yet")
	}

	// A session with data counts as started even without Start.
	sess.SetAttribute("user", "alice")
	if !sess.IsStarted() {
		t.Error("session with attributes should report started")
	}
	if got := sess.State(); got != StateNew {
		t.Errorf("explicit state should remain NEW, got %v", got)
	}
}

func TestSetMaxIdleTime(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()

	sess.SetMaxIdleTime(5 * time.Minute)
	if got := sess.MaxIdleTime(); got != 5*time.Minute {
		t.Errorf("MaxIdleTime() = %v, want %v", got, 5*time.Minute)
	}

	sess.SetMaxIdleTime(-1)
	if got := sess.MaxIdleTime(); got >= 0 {
		t.Errorf("MaxIdleTime() = %v, want negative", got)
	}
}

func TestIdleExpiry(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()
	sess.Start()
	sess.SetMaxIdleTime(30 * time.Minute)

	// At exactly the idle boundary the session is still alive.
	clk.Advance(30 * time.Minute)
	if sess.IsExpired() {
		t.Error("session should not be expired at exactly lastAccess + maxIdle")
	}

	clk.Advance(time.Second)
	if !sess.IsExpired() {
		t.Error("session should be expired past lastAccess + maxIdle")
	}
	if got := sess.State(); got != StateExpired {
		t.Errorf("State() = %v, want %v (memoized)", got, StateExpired)
	}
}

func TestExpiryMemoized(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()
	sess.Start()
	sess.SetMaxIdleTime(time.Minute)

	clk.Advance(2 * time.Minute)
	if !sess.IsExpired() {
		t.Fatal("session should be expired")
	}

	// Moving the clock back does not resurrect: EXPIRED is terminal.
	clk.Set(testEpoch)
	if !sess.IsExpired() {
		t.Error("expired session should stay expired after clock rollback")
	}
}

func TestStartCannotOverwriteExpired(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()
	sess.Start()
	sess.SetMaxIdleTime(time.Minute)

	clk.Advance(2 * time.Minute)
	if !sess.IsExpired() {
		t.Fatal("session should be expired")
	}

	sess.Start()
	if got := sess.State(); got != StateExpired {
		t.Errorf("State() after Start = %v, want %v (EXPIRED is terminal)", got, StateExpired)
	}

	// The transition also holds up under concurrent Start attempts.
	sess2 := store.Create()
	sess2.Start()
	sess2.SetMaxIdleTime(time.Minute)
	clk.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess2.Start()
			sess2.IsExpired()
		}()
	}
	wg.Wait()
	if got := sess2.State(); got != StateExpired {
		t.Errorf("State() after concurrent Start = %v, want %v", got, StateExpired)
	}
}

func TestUnstartedNeverIdleExpires(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()

	clk.Advance(24 * time.Hour)
	if sess.IsExpired() {
		t.Error("a NEW session without attributes should not idle-expire")
	}
}

func TestNegativeMaxIdleDisablesExpiry(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()
	sess.Start()
	sess.SetMaxIdleTime(-1)
	sess.Save()

	clk.Advance(1000 * time.Hour)
	if sess.IsExpired() {
		t.Error("negative maxIdleTime should disable idle expiry")
	}
	if _, ok := store.Retrieve(sess.ID()); !ok {
		t.Error("session should remain retrievable indefinitely")
	}
}

func TestInvalidateIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()
	sess.SetAttribute("cart", []string{"a", "b"})
	sess.Save()

	for i := 0; i < 2; i++ {
		sess.Invalidate()

		if got := sess.State(); got != StateExpired {
			t.Errorf("invalidate #%d: State() = %v, want %v", i+1, got, StateExpired)
		}
		if got := sess.AttributeCount(); got != 0 {
			t.Errorf("invalidate #%d: AttributeCount() = %d, want 0", i+1, got)
		}
		if _, ok := store.Retrieve(sess.ID()); ok {
			t.Errorf("invalidate #%d: session should not be retrievable", i+1)
		}
	}
}

func TestChangeID(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()
	sess.SetAttribute("user", "alice")
	sess.Save()

	oldID := sess.ID()
	newID := sess.ChangeID()

	if newID == oldID {
		t.Fatal("ChangeID should produce a fresh id")
	}
	if got := sess.ID(); got != newID {
		t.Errorf("ID() = %q, want %q", got, newID)
	}

	if _, ok := store.Retrieve(oldID); ok {
		t.Error("old id should no longer resolve")
	}

	got, ok := store.Retrieve(newID)
	if !ok {
		t.Fatal("new id should resolve")
	}
	if got != sess {
		t.Error("new id should resolve to the same entity")
	}
	if !got.CreationTime().Equal(sess.CreationTime()) {
		t.Error("rekey must not alter the creation time")
	}
	if v, _ := got.Attribute("user"); v != "alice" {
		t.Errorf("attribute after rekey = %v, want %q", v, "alice")
	}
}

func TestAttributes(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()

	sess.SetAttribute("a", 1)
	sess.SetAttribute("b", "two")

	if v, ok := sess.Attribute("a"); !ok || v != 1 {
		t.Errorf("Attribute(a) = (%v, %v), want (1, true)", v, ok)
	}

	snapshot := sess.Attributes()
	if len(snapshot) != 2 {
		t.Errorf("len(Attributes()) = %d, want 2", len(snapshot))
	}

	// The snapshot is detached from the live container.
	snapshot["c"] = 3
	if sess.AttributeCount() != 2 {
		t.Error("mutating the snapshot must not affect the session")
	}

	sess.DeleteAttribute("a")
	if _, ok := sess.Attribute("a"); ok {
		t.Error("Attribute(a) should be gone after DeleteAttribute")
	}
}

func TestConcurrentAttributeMutation(t *testing.T) {
	store, _ := newTestStore(t)
	sess := store.Create()
	sess.Save()

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i%10)
				sess.SetAttribute(key, i)
				sess.Attribute(key)
				if i%3 == 0 {
					sess.DeleteAttribute(key)
				}
			}
		}(g)
	}

	wg.Wait()
	// No assertion on exact contents; the container must simply survive
	// concurrent mutation intact.
	sess.Attributes()
}

func TestLastAccessNeverBeforeCreation(t *testing.T) {
	store, clk := newTestStore(t)
	sess := store.Create()
	sess.Save()

	observe := func(when string) {
		if sess.LastAccessTime().Before(sess.CreationTime()) {
			t.Errorf("%s: lastAccessTime %v before creationTime %v",
				when, sess.LastAccessTime(), sess.CreationTime())
		}
	}

	observe("after create")
	clk.Advance(time.Minute)
	store.Retrieve(sess.ID())
	observe("after retrieve")
	if err := store.Touch(sess); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	observe("after touch")
}
