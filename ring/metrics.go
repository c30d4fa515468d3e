package ring

// Stats is a point-in-time snapshot of a Ring's activity counters, the
// Go-native analogue of the teacher's MetricsSnapshot: plain values handed
// back to the caller rather than live atomics, since Ring is deliberately
// single-threaded.
type Stats struct {
	Size              int
	Count             int
	Head              int
	Tail              int
	Puts              uint64
	Gets              uint64
	Pulls             uint64
	Tombstones        uint64
	CapacityExhausted uint64
}

// Stats returns a snapshot of the buffer's current cursors and cumulative
// operation counters.
func (r *Ring) Stats() Stats {
	return Stats{
		Size:              r.size,
		Count:             r.count,
		Head:              r.head,
		Tail:              r.tail,
		Puts:              r.puts,
		Gets:              r.gets,
		Pulls:             r.pulls,
		Tombstones:        r.tombstones,
		CapacityExhausted: r.capacityExhausted,
	}
}
