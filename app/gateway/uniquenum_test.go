package gateway

import (
	"testing"
	"time"
)

type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func TestUniqueNumberGeneratorLength(t *testing.T) {
	clock := &steppingClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), step: time.Millisecond}
	gen := NewUniqueNumberGenerator(clock)

	for i := 0; i < 50; i++ {
		id := gen.Generate()
		if len(id) != 15 {
			t.Fatalf("expected 15 digits, got %d (%s)", len(id), id)
		}
		for _, r := range id {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric id, got %s", id)
			}
		}
	}
}

func TestUniqueNumberGeneratorUniqueness(t *testing.T) {
	clock := &steppingClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), step: time.Millisecond}
	gen := NewUniqueNumberGenerator(clock)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := gen.Generate()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestUniqueNumberGeneratorDefaultsToSystemClock(t *testing.T) {
	gen := NewUniqueNumberGenerator(nil)

	if id := gen.Generate(); len(id) != 15 {
		t.Fatalf("expected 15 digits, got %d (%s)", len(id), id)
	}
}
