// Package scheduler implements a cooperative, single-threaded event
// scheduler: a min-heap of timer-driven tasks plus a flag-keyed wait table
// for event-driven ones, running out of one blocking Start call the way a
// resource-constrained control loop expects.
//
// Scheduler is not safe for concurrent use from multiple goroutines except
// through Snapshot, which reads atomic counters. Every other method is
// meant to be called either before Start, or from within a Job running on
// the goroutine that called Start — the same cooperative, non-preemptive
// discipline the scheduler enforces on its own tasks.
package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/ehrlich-b/go-workloop/internal/clock"
	"github.com/ehrlich-b/go-workloop/internal/logging"
)

const (
	cleanupInterval   = 10_000 // ms, matches the original's lazy cleanup cadence
	compactInterval   = 60_000 // ms
	idleSleep         = 100    // ms, polled when the heap is empty or the next task isn't due
	taskCounterCap    = 1_000_000
	idGenerationTries = 100
)

// Logger is the diagnostic sink a Scheduler reports faults and lifecycle
// events through. *logging.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Params configures a Scheduler's admission policy.
type Params struct {
	// MaxTasks caps the number of concurrently-registered tasks (pending,
	// event-waiting, or mid-run). Scheduling beyond this limit fails.
	MaxTasks int
}

// DefaultParams returns sensible Params: a 256-task ceiling, matching the
// original's default.
func DefaultParams() Params {
	return Params{MaxTasks: 256}
}

// Options carries a Scheduler's cross-cutting collaborators.
type Options struct {
	// Clock supplies NowMs readings; nil uses clock.NewSystemClock().
	Clock clock.Clock

	// Logger receives diagnostic text; nil uses logging.Default().
	Logger Logger
}

// Scheduler runs tasks from a min-heap ordered by next-run time, plus a
// flag-keyed table of tasks waiting on an event.
type Scheduler struct {
	params Params
	clock  clock.Clock
	logger Logger

	heap  taskHeap
	tasks map[TaskID]*task
	flags map[string][]*task

	taskCounter uint32
	running     bool

	lastCleanup     uint32
	lastHeapCompact uint32

	currentTaskID TaskID

	metrics Metrics
}

// New constructs a Scheduler. params.MaxTasks must be positive.
func New(params Params, options *Options) (*Scheduler, error) {
	if params.MaxTasks < 1 {
		return nil, newError("New", ErrCodeInvalidArgument, "MaxTasks must be a positive integer")
	}
	if options == nil {
		options = &Options{}
	}

	s := &Scheduler{
		params: params,
		clock:  options.Clock,
		logger: options.Logger,
		tasks:  make(map[TaskID]*task),
		flags:  make(map[string][]*task),
	}
	if s.clock == nil {
		s.clock = clock.NewSystemClock()
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	now := s.clock.NowMs()
	s.lastCleanup = now
	s.lastHeapCompact = now
	return s, nil
}

func (s *Scheduler) generateTaskID() (TaskID, error) {
	for i := 0; i < idGenerationTries; i++ {
		s.taskCounter = (s.taskCounter % taskCounterCap) + 1
		candidate := TaskID(s.taskCounter)
		if _, exists := s.tasks[candidate]; !exists {
			return candidate, nil
		}
	}
	return 0, newError("generateTaskID", ErrCodeTaskLimit, "no free task identifier available")
}

// resolveTaskID maps the "0 means current task" convention onto a concrete
// id for lookups.
func (s *Scheduler) resolveTaskID(id TaskID) TaskID {
	if id == 0 {
		return s.currentTaskID
	}
	return id
}

func (s *Scheduler) scheduleTask(job Job, params []any, delayMs int64, repeat int64, waitFor string, requestedID TaskID) TaskID {
	if job == nil {
		s.logger.Printf("scheduler: invalid schedule parameters: job is nil")
		return 0
	}
	if delayMs < 0 {
		s.logger.Printf("scheduler: invalid schedule parameters: delay must be >= 0")
		return 0
	}
	if len(s.tasks) >= s.params.MaxTasks {
		s.logger.Printf("scheduler: maximum task limit reached")
		return 0
	}

	id := requestedID
	if id != 0 {
		if _, exists := s.tasks[id]; exists {
			id = 0
		}
	}
	if id == 0 {
		generated, err := s.generateTaskID()
		if err != nil {
			s.logger.Printf("scheduler: %v", err)
			return 0
		}
		id = generated
	}

	t := &task{
		id:      id,
		job:     job,
		params:  params,
		delayMs: delayMs,
		repeat:  repeat,
		flag:    waitFor,
		nextRun: s.clock.NowMs() + uint32(delayMs),
	}
	s.tasks[id] = t
	s.metrics.scheduled.Add(1)

	if waitFor != "" {
		s.flags[waitFor] = append(s.flags[waitFor], t)
	} else {
		heap.Push(&s.heap, t)
	}
	return id
}

// Do schedules job to run as soon as the loop next considers it.
func (s *Scheduler) Do(job Job, params ...any) TaskID {
	return s.scheduleTask(job, params, 0, 0, "", 0)
}

// At schedules job to run once, delayMs from now.
func (s *Scheduler) At(job Job, delayMs int64, params ...any) TaskID {
	return s.scheduleTask(job, params, delayMs, 0, "", 0)
}

// Repeat schedules job to run every everyMs, first firing atMs from now.
// everyMs must be positive.
func (s *Scheduler) Repeat(job Job, everyMs int64, atMs int64, params ...any) TaskID {
	if everyMs <= 0 {
		s.logger.Printf("scheduler: repeat interval must be positive")
		return 0
	}
	return s.scheduleTask(job, params, atMs, everyMs, "", 0)
}

// On schedules job to run when flag is triggered via TriggerEvent. The task
// is enrolled on flag immediately; atMs is recorded as its DelayMs and
// initial NextRun, but TriggerEvent sets NextRun to the trigger time, so
// atMs does not delay the run. repeating controls whether the task
// re-enrolls on flag after each run.
func (s *Scheduler) On(job Job, flag string, atMs int64, repeating bool, params ...any) TaskID {
	if flag == "" {
		s.logger.Printf("scheduler: event flag cannot be empty")
		return 0
	}
	var repeat int64
	if repeating {
		repeat = 1
	}
	return s.scheduleTask(job, params, atMs, repeat, flag, 0)
}

// TriggerEvent fires flag, moving every non-cancelled, not-already-triggered
// waiter onto the heap to run immediately, and returns how many it woke.
func (s *Scheduler) TriggerEvent(flag string, params ...any) int {
	waiters, ok := s.flags[flag]
	if !ok {
		return 0
	}

	triggered := 0
	now := s.clock.NowMs()
	for _, t := range waiters {
		if t.cancelled || t.eventTriggered {
			continue
		}
		t.eventTriggered = true
		if len(params) > 0 {
			t.params = params
		}
		t.nextRun = now
		heap.Push(&s.heap, t)
		triggered++
		if t.repeat <= 0 {
			t.flag = ""
		}
	}

	remaining := waiters[:0]
	for _, t := range waiters {
		if t.flag == flag {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == 0 {
		delete(s.flags, flag)
	} else {
		s.flags[flag] = remaining
	}

	if triggered > 0 {
		s.metrics.triggered.Add(uint64(triggered))
	}
	return triggered
}

// AwaitEvent registers taskID (0 meaning the current task) to wait on flag.
// It sets the task's repeat to 1, replacing any earlier interval, so the
// task stays registered after its current run and remains enrolled on flag
// as a persistent listener.
func (s *Scheduler) AwaitEvent(flag string, taskID TaskID) bool {
	if flag == "" {
		return false
	}
	t, ok := s.tasks[s.resolveTaskID(taskID)]
	if !ok {
		return false
	}
	t.flag = flag
	t.eventTriggered = false
	t.repeat = 1
	s.flags[flag] = append(s.flags[flag], t)
	return true
}

// Send replaces the params a pending or current task will next run with.
func (s *Scheduler) Send(taskID TaskID, params ...any) bool {
	t, ok := s.tasks[s.resolveTaskID(taskID)]
	if !ok {
		return false
	}
	if len(params) == 0 {
		return false
	}
	t.params = params
	return true
}

// SetRepeat changes taskID's repeat interval. everyMs of 0 converts a
// repeating task to one-shot after its next run.
func (s *Scheduler) SetRepeat(taskID TaskID, everyMs int64) bool {
	if everyMs < 0 {
		return false
	}
	t, ok := s.tasks[s.resolveTaskID(taskID)]
	if !ok {
		return false
	}
	t.repeat = everyMs
	return true
}

// Cancel marks taskID cancelled and synchronously removes it from any flag
// waitlist. Its heap entry, if any, is discarded lazily by the main loop.
// Cancel is idempotent.
func (s *Scheduler) Cancel(taskID TaskID) bool {
	t, ok := s.tasks[s.resolveTaskID(taskID)]
	if !ok {
		return false
	}
	t.cancelled = true
	if t.flag != "" {
		s.removeFromFlag(t.flag, t)
	}
	s.metrics.cancelled.Add(1)
	return true
}

func (s *Scheduler) removeFromFlag(flag string, target *task) {
	waiters, ok := s.flags[flag]
	if !ok {
		return
	}
	out := waiters[:0]
	for _, t := range waiters {
		if t != target {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		delete(s.flags, flag)
	} else {
		s.flags[flag] = out
	}
}

// AbortCurrentTask cancels whichever task is presently executing, if any.
func (s *Scheduler) AbortCurrentTask() bool {
	if s.currentTaskID == 0 {
		return false
	}
	return s.Cancel(s.currentTaskID)
}

// Status returns a snapshot of taskID's state. ok is false if no such task
// exists.
func (s *Scheduler) Status(taskID TaskID) (TaskStatus, bool) {
	t, ok := s.tasks[s.resolveTaskID(taskID)]
	if !ok {
		return TaskStatus{}, false
	}
	return t.status(), true
}

// TaskCount returns the number of tasks currently registered (pending,
// event-waiting, or mid-run).
func (s *Scheduler) TaskCount() int {
	return len(s.tasks)
}

// PendingCount returns the number of tasks currently sitting in the
// heap, including ones also referenced from a flag wait (briefly, around
// event delivery) and stale cancelled entries not yet discarded.
func (s *Scheduler) PendingCount() int {
	return len(s.heap)
}

func (s *Scheduler) cleanupLazy() {
	now := s.clock.NowMs()
	if clock.TicksDiff(now, s.lastCleanup) < cleanupInterval {
		return
	}
	s.lastCleanup = now

	for flag, waiters := range s.flags {
		alive := waiters[:0]
		for _, t := range waiters {
			if !t.cancelled {
				alive = append(alive, t)
			}
		}
		if len(alive) == 0 {
			delete(s.flags, flag)
		} else {
			s.flags[flag] = alive
		}
	}

	for id, t := range s.tasks {
		if t.cancelled {
			delete(s.tasks, id)
		}
	}
	s.metrics.cleanups.Add(1)
}

func (s *Scheduler) compactHeap() {
	now := s.clock.NowMs()
	if clock.TicksDiff(now, s.lastHeapCompact) < compactInterval {
		return
	}
	s.lastHeapCompact = now

	alive := make(taskHeap, 0, len(s.heap))
	for _, t := range s.heap {
		if !t.cancelled {
			alive = append(alive, t)
		}
	}
	s.heap = alive
	heap.Init(&s.heap)
	s.metrics.compacts.Add(1)
}

// Start runs the main loop until Stop is called, every task has completed
// and none remain, or ctx is cancelled. It blocks the calling goroutine and
// only ever touches scheduler state from that goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.running = true
	defer func() { s.running = false }()

	for s.running {
		s.cleanupLazy()
		s.compactHeap()

		if len(s.heap) == 0 {
			if err := s.sleep(ctx, idleSleep); err != nil {
				return err
			}
			continue
		}

		now := s.clock.NowMs()
		next := s.heap[0]

		if next.cancelled || (next.flag != "" && !next.eventTriggered) {
			heap.Pop(&s.heap)
			continue
		}

		wait := clock.TicksDiff(next.nextRun, now)
		if wait > 0 {
			sleepMs := wait
			if sleepMs > idleSleep {
				sleepMs = idleSleep
			}
			if err := s.sleep(ctx, sleepMs); err != nil {
				return err
			}
			continue
		}

		s.runOne(now)
	}
	return nil
}

func (s *Scheduler) sleep(ctx context.Context, ms int32) error {
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) runOne(now uint32) {
	t := heap.Pop(&s.heap).(*task)

	previousTaskID := s.currentTaskID
	s.currentTaskID = t.id
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Printf("scheduler: task %d execution error: %v", t.id, r)
				s.metrics.faulted.Add(1)
			}
		}()
		t.job(t.params...)
	}()
	s.currentTaskID = previousTaskID
	s.metrics.executed.Add(1)

	if t.repeat > 0 && !t.cancelled {
		t.nextRun = now + uint32(t.repeat)
		heap.Push(&s.heap, t)
	} else {
		delete(s.tasks, t.id)
		if len(s.tasks) == 0 {
			s.running = false
		}
	}

	if t.flag != "" {
		t.eventTriggered = false
		if t.repeat <= 0 || t.cancelled {
			s.removeFromFlag(t.flag, t)
			t.flag = ""
		}
	}
}

// Stop halts the main loop and clears all scheduler state: every pending
// task, event waiter, and heap entry is dropped.
func (s *Scheduler) Stop() {
	s.running = false
	s.heap = nil
	s.tasks = make(map[TaskID]*task)
	s.flags = make(map[string][]*task)
}
