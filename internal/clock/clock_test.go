package clock

import (
	"testing"
	"time"
)

func TestTicksDiffOrdinary(t *testing.T) {
	if got := TicksDiff(150, 100); got != 50 {
		t.Fatalf("TicksDiff(150, 100) = %d, want 50", got)
	}
	if got := TicksDiff(100, 150); got != -50 {
		t.Fatalf("TicksDiff(100, 150) = %d, want -50", got)
	}
}

func TestTicksDiffWraparound(t *testing.T) {
	// counter wrapped from just below max back to a small value: logically
	// "b" is earlier than "a" by 11 ticks even though a < b numerically
	// (5 ticks up to max-uint32, 1 to wrap to 0, 5 more to reach 5).
	var a uint32 = 5
	var b uint32 = 4294967290 // max-uint32 - 5
	if got := TicksDiff(a, b); got != 11 {
		t.Fatalf("TicksDiff wraparound = %d, want 11", got)
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	t0 := c.NowMs()
	time.Sleep(5 * time.Millisecond)
	t1 := c.NowMs()
	if TicksDiff(t1, t0) < 0 {
		t.Fatalf("expected non-decreasing clock, got t0=%d t1=%d", t0, t1)
	}
}
