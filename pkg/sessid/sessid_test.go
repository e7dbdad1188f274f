package sessid

import (
	"strings"
	"sync"
	"testing"
)

func TestNewID(t *testing.T) {
	g := NewGenerator()

	id := g.NewID()
	if !strings.HasPrefix(id, Prefix) {
		t.Errorf("ID should have prefix %q, got %q", Prefix, id)
	}
	if len(id) != Length {
		t.Errorf("ID length = %d, want %d", len(id), Length)
	}
	if id != strings.ToLower(id) {
		t.Errorf("ID should be lowercase, got %q", id)
	}
}

func TestNewIDUnique(t *testing.T) {
	g := NewGenerator()
	ids := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := g.NewID()
		if !IsValid(id) {
			t.Fatalf("generated ID is not valid: %q", id)
		}
		if ids[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		ids[id] = true
	}
}

func TestNewIDConcurrent(t *testing.T) {
	g := NewGenerator()

	const goroutines = 8
	const perGoroutine = 100

	var mu sync.Mutex
	ids := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id := g.NewID()
				mu.Lock()
				if ids[id] {
					t.Errorf("duplicate ID generated: %q", id)
				}
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(ids) != goroutines*perGoroutine {
		t.Errorf("generated %d unique IDs, want %d", len(ids), goroutines*perGoroutine)
	}
}

func TestIsValid(t *testing.T) {
	g := NewGenerator()
	valid := g.NewID()

	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"generated ID", valid, true},
		{"uppercase variant", strings.ToUpper(valid), true},
		{"wrong prefix", "sk-" + valid[len(Prefix):], false},
		{"no prefix", valid[len(Prefix):], false},
		{"too short", "sks-01hqv123", false},
		{"too long", valid + "xyz", false},
		{"empty", "", false},
		{"invalid ULID chars", "sks-!!!!!!!!!!!!!!!!!!!!!!!!!!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.id); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	g := NewGenerator()
	id := g.NewID()

	if got := Normalize(strings.ToUpper(id)); got != id {
		t.Errorf("Normalize(upper) = %q, want %q", got, id)
	}
	if got := Normalize("not-a-session-id"); got != "" {
		t.Errorf("Normalize(invalid) = %q, want empty", got)
	}
}
