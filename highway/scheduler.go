package highway

import (
	"container/heap"
	"sync/atomic"
	"time"
)

// RepeatFunc is a scheduled task's body. It receives the same keepRunning
// flag as a plain Task; the two return values say whether the task should
// run again and, if so, after what delay — the Go equivalent of mutating
// Schedule::rechedule_/next_execution_time_ from inside the task itself.
type RepeatFunc func(keepRunning *atomic.Bool) (reschedule bool, again time.Duration)

// ScheduledTask pairs a RepeatFunc with the time it should next run,
// grounded in execution_tree/Schedule.h's Schedule struct. protector, if
// set, is checked at pop-due time: a task whose protector has broken is
// dropped silently instead of being dispatched, mirroring how a plain
// Task with a broken protector is skipped by Task.Run.
type ScheduledTask struct {
	fn        RepeatFunc
	file      string
	line      int
	nextRun   time.Time
	protector Protector
	index     int // heap bookkeeping
}

type scheduledHeap []*ScheduledTask

func (h scheduledHeap) Len() int           { return len(h) }
func (h scheduledHeap) Less(i, j int) bool { return h[i].nextRun.Before(h[j].nextRun) }
func (h scheduledHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *scheduledHeap) Push(x any) {
	t := x.(*ScheduledTask)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *scheduledHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Scheduler is a min-heap of ScheduledTasks ordered by next run time. It
// has no goroutine or timer of its own — a Highway drains due tasks
// straight out of its own run loop (see highway.go), so scheduled work
// always executes on the same worker goroutine as ordinary posted tasks,
// and the heap itself is only ever touched from that one goroutine. This
// replaces the earlier design where a Scheduler ran an independent
// background goroutine+timer and dispatched onto a host Highway as a
// second, separately-racing actor.
type Scheduler struct {
	heap scheduledHeap
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule enqueues fn to run once at (or shortly after) at. protector may
// be nil.
func (s *Scheduler) Schedule(fn RepeatFunc, at time.Time, protector Protector, file string, line int) {
	heap.Push(&s.heap, &ScheduledTask{fn: fn, file: file, line: line, nextRun: at, protector: protector})
}

// ScheduleIn enqueues fn to run once after d elapses. protector may be
// nil.
func (s *Scheduler) ScheduleIn(fn RepeatFunc, d time.Duration, protector Protector, file string, line int) {
	s.Schedule(fn, time.Now().Add(d), protector, file, line)
}

// NextDeadline returns the next scheduled task's due time, and whether
// the schedule is non-empty at all.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	if len(s.heap) == 0 {
		return time.Time{}, false
	}
	return s.heap[0].nextRun, true
}

// PopDue removes and returns every task due at or before now, in
// ascending deadline order. A task whose protector declines to lock at
// pop time is dropped rather than returned.
func (s *Scheduler) PopDue(now time.Time) []*ScheduledTask {
	var due []*ScheduledTask
	for len(s.heap) > 0 && !s.heap[0].nextRun.After(now) {
		task := heap.Pop(&s.heap).(*ScheduledTask)
		if task.protector != nil && !task.protector.Lock() {
			continue
		}
		due = append(due, task)
	}
	return due
}

// Len reports how many tasks are currently scheduled.
func (s *Scheduler) Len() int { return len(s.heap) }
