package scheduler

import "sync/atomic"

// Metrics holds cumulative scheduler activity counters, incremented with
// atomics so Snapshot() can be called safely from a goroutine other than
// the one driving Start, mirroring the teacher's Metrics/MetricsSnapshot
// split in metrics.go.
type Metrics struct {
	scheduled  atomic.Uint64
	cancelled  atomic.Uint64
	executed   atomic.Uint64
	faulted    atomic.Uint64
	triggered  atomic.Uint64
	cleanups   atomic.Uint64
	compacts   atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters.
type MetricsSnapshot struct {
	Scheduled uint64
	Cancelled uint64
	Executed  uint64
	Faulted   uint64
	Triggered uint64
	Cleanups  uint64
	Compacts  uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Scheduled: m.scheduled.Load(),
		Cancelled: m.cancelled.Load(),
		Executed:  m.executed.Load(),
		Faulted:   m.faulted.Load(),
		Triggered: m.triggered.Load(),
		Cleanups:  m.cleanups.Load(),
		Compacts:  m.compacts.Load(),
	}
}

// Snapshot returns a point-in-time copy of the scheduler's activity
// counters.
func (s *Scheduler) Snapshot() MetricsSnapshot {
	return s.metrics.snapshot()
}
