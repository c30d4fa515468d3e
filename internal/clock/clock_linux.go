//go:build linux

package clock

import "golang.org/x/sys/unix"

// monotonicNanos reads CLOCK_MONOTONIC directly, the same syscall family
// the teacher's internal/queue/runner.go used for CPU-affinity and mmap
// bookkeeping (golang.org/x/sys/unix), here re-purposed to ground the
// scheduler's external clock source instead of I/O thread pinning.
func monotonicNanos() (int64, bool) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, false
	}
	return ts.Sec*1e9 + ts.Nsec, true
}
