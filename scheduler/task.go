package scheduler

import "fmt"

// TaskID identifies a scheduled task. 0 is reserved: passed to any public
// method it means "the currently-executing task" rather than naming a real
// task.
type TaskID uint32

// Job is the unit of work a Task carries out. Params mirrors the variadic
// argument tuple the job was scheduled or last Send-updated with.
type Job func(params ...any)

// Task is an internal scheduling record. Fields are unexported; callers
// observe a task's state through Scheduler.Status, never this type
// directly, mirroring the teacher's internal request/job records.
type task struct {
	id     TaskID
	job    Job
	params []any

	delayMs int64 // initial delay from scheduling time
	repeat  int64 // 0 means one-shot; >0 is the repeat interval in ms
	flag    string

	cancelled      bool
	eventTriggered bool
	nextRun        uint32 // clock.NowMs()-domain timestamp
	heapIndex      int    // maintained by container/heap
}

// TaskStatus is a read-only, point-in-time snapshot of a task, returned by
// Scheduler.Status.
type TaskStatus struct {
	ID             TaskID
	Params         []any
	DelayMs        int64
	Repeat         int64
	Flag           string
	EventTriggered bool
	NextRun        uint32
	Cancelled      bool
}

func (t *task) status() TaskStatus {
	return TaskStatus{
		ID:             t.id,
		Params:         t.params,
		DelayMs:        t.delayMs,
		Repeat:         t.repeat,
		Flag:           t.flag,
		EventTriggered: t.eventTriggered,
		NextRun:        t.nextRun,
		Cancelled:      t.cancelled,
	}
}

// String implements fmt.Stringer for debug printing, the Go analogue of
// the original's Task.__repr__.
func (s TaskStatus) String() string {
	return fmt.Sprintf("Task(id=%d, flag=%q, next_run=%d, cancelled=%t)", s.ID, s.Flag, s.NextRun, s.Cancelled)
}
