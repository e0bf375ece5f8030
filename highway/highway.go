// Package highway implements single- and multi-worker task runners backed
// by a bounded mailbox: callers post Tasks, a dedicated worker goroutine
// (or a pool of them) drains the mailbox in order, and a liveness phase is
// published so a Monitor can detect a worker stuck on a single task.
package highway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/highwaygo/highways/mailbox"
)

// Phase is the current activity of a Highway's worker goroutine, published
// so self_check/Monitor can tell a genuinely stuck task apart from one
// that is merely idle. Names and meanings carry over from the original's
// HighWayBundle::WhatRunningNow enum.
type Phase int32

const (
	// PhaseSleep means the worker is blocked waiting for the next message
	// or scheduled wakeup; this is never reported as stuck.
	PhaseSleep Phase = iota
	// PhaseMailBoxMessage means the worker is running a task popped from
	// the mailbox.
	PhaseMailBoxMessage
	// PhaseFreeTimeCustomLogic means the worker is running the
	// FreeTimeLogic hook.
	PhaseFreeTimeCustomLogic
	// PhaseStopped means the worker goroutine has exited.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseSleep:
		return "sleep"
	case PhaseMailBoxMessage:
		return "mailbox_message"
	case PhaseFreeTimeCustomLogic:
		return "free_time_custom_logic"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FreeTimeLogic is an optional hook a Highway runs once per idle pass
// through its worker loop, after the mailbox has been fully drained.
// keepRunning reflects whether the highway is still on the run generation
// that started the loop.
type FreeTimeLogic func(keepRunning *atomic.Bool)

// Highway is a single-worker task runner with a bounded mailbox. The zero
// value is not usable; construct one with New.
type Highway struct {
	cfg       config
	box       *mailbox.Mailbox[Task]
	scheduler *Scheduler

	runID       atomic.Uint64
	keepRunning atomic.Bool

	phase         atomic.Int32
	taskStartedAt atomic.Int64 // unix nanoseconds
	taskFile      atomic.Pointer[string]
	taskLine      atomic.Int64

	workerGoroutineID atomic.Uint64

	stoppedOnce sync.Once
	wg          sync.WaitGroup
}

// New creates a Highway and immediately starts its worker goroutine.
func New(opts ...Option) *Highway {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if cfg.exceptionHandler == nil {
		cfg.exceptionHandler = defaultExceptionHandler(cfg.logger)
	}

	h := &Highway{
		cfg:       cfg,
		box:       mailbox.New[Task](cfg.capacity),
		scheduler: NewScheduler(),
	}
	h.phase.Store(int32(PhaseSleep))
	h.keepRunning.Store(true)
	h.wg.Add(1)
	go h.run(h.runID.Load())
	return h
}

// Name returns the highway's configured name.
func (h *Highway) Name() string { return h.cfg.name }

// Phase reports the worker's current activity.
func (h *Highway) Phase() Phase { return Phase(h.phase.Load()) }

// Post enqueues task without blocking, returning false if the mailbox is
// full.
func (h *Highway) Post(task Task) bool {
	return h.PostResult(task).OK()
}

// PostResult enqueues task without blocking, reporting the mailbox's
// ResultCode instead of collapsing it to the bool Post returns.
func (h *Highway) PostResult(task Task) ResultCode {
	return h.box.Send(task)
}

// PostMayBlock enqueues task, blocking the caller if the mailbox is
// temporarily full rather than dropping the task.
func (h *Highway) PostMayBlock(task Task) {
	h.box.SendMayBlocked(task)
}

// Schedule registers fn to run on the highway's own worker goroutine at
// (or shortly after) at, optionally rescheduling itself if it asks to run
// again. Registration itself is serialized through a task posted to the
// highway, so the scheduler's heap — which PopDue/NextDeadline also touch
// from inside run() — is only ever mutated on the worker goroutine.
// protector may be nil.
func (h *Highway) Schedule(fn RepeatFunc, at time.Time, protector Protector, file string, line int) {
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		h.scheduler.Schedule(fn, at, protector, file, line)
		h.box.Nudge()
	}, file, line))
}

// ScheduleIn registers fn to run once after d elapses. protector may be
// nil.
func (h *Highway) ScheduleIn(fn RepeatFunc, d time.Duration, protector Protector, file string, line int) {
	h.Schedule(fn, time.Now().Add(d), protector, file, line)
}

// FlushTasks blocks until every task already posted to the highway at the
// moment of the call has run, without waiting for anything posted
// afterward. It works by posting a marker task and blocking until that
// marker runs: since the mailbox delivers tasks in FIFO order, every task
// posted before FlushTasks was called is guaranteed to have already run
// by the time the marker does.
//
// FlushTasks must not be called from the highway's own worker goroutine —
// doing so would deadlock a single-worker Highway waiting on itself. That
// case is detected and treated as a no-op instead: if the calling
// goroutine is already the worker, everything posted so far (by
// definition, everything that could have reached the mailbox before this
// call) has already run.
func (h *Highway) FlushTasks() {
	if h.CurrentThreadIsWorker() {
		return
	}
	done := make(chan struct{})
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		close(done)
	}, "highway/highway.go", 0))
	<-done
}

// CurrentThreadIsWorker reports whether the calling goroutine is this
// highway's worker goroutine.
func (h *Highway) CurrentThreadIsWorker() bool {
	return getGoroutineID() == h.workerGoroutineID.Load()
}

// SetCapacity raises the highway's mailbox holder ceiling to at least n.
// Capacity never shrinks.
func (h *Highway) SetCapacity(n uint32) {
	h.box.SetCapacity(n)
}

// StuckDuration returns how long the currently executing task (if any) has
// been running. It is zero while the worker is asleep or idle.
func (h *Highway) StuckDuration() time.Duration {
	if h.Phase() != PhaseMailBoxMessage {
		return 0
	}
	started := h.taskStartedAt.Load()
	if started == 0 {
		return 0
	}
	return time.Since(time.Unix(0, started))
}

// SelfCheck reports the current phase and, when a task has been running
// longer than the configured max execution time, invokes the exception
// handler with a stuck-task Exception. It returns the phase so a Monitor
// can distinguish highways it should keep watching from ones that merely
// went quiet.
func (h *Highway) SelfCheck() Phase {
	phase := h.Phase()
	if phase == PhaseSleep || phase == PhaseStopped {
		return phase
	}
	if stuck := h.StuckDuration(); h.cfg.maxTaskExecutionTime > 0 && stuck > h.cfg.maxTaskExecutionTime {
		file := "?"
		if p := h.taskFile.Load(); p != nil {
			file = *p
		}
		ex := NewException("task stuck", file, int(h.taskLine.Load()))
		ex.HighwayID = h.cfg.name
		h.cfg.exceptionHandler(ex)
	}
	return phase
}

// Destroy stops the worker goroutine and waits for it to exit. Destroy is
// safe to call more than once; subsequent calls are no-ops.
func (h *Highway) Destroy() {
	h.stoppedOnce.Do(func() {
		h.keepRunning.Store(false)
		h.runID.Add(1)
		h.box.Destroy()
		h.wg.Wait()
	})
}

func (h *Highway) run(yourRunID uint64) {
	defer h.wg.Done()
	defer h.phase.Store(int32(PhaseStopped))

	h.workerGoroutineID.Store(getGoroutineID())

	for yourRunID == h.runID.Load() {
		// Step 1: non-blocking drain of whatever already reached the work
		// queue, mirroring SingleThreadHighWay::main_worker_thread_loop's
		// while(pop_message()) pattern: PopMessage never blocks, so this
		// inner loop simply runs dry the moment the queue empties.
		h.phase.Store(int32(PhaseMailBoxMessage))
		for {
			holder := h.box.PopMessage()
			if holder == nil {
				break
			}
			task := holder.Value

			file, line := task.File(), task.Line()
			h.taskFile.Store(&file)
			h.taskLine.Store(int64(line))
			h.taskStartedAt.Store(time.Now().UnixNano())

			h.runTaskSafely(task, &h.keepRunning)

			h.box.Free(holder)

			if yourRunID != h.runID.Load() {
				return
			}
		}

		// Step 2: dispatch every scheduled task now due, rescheduling any
		// that asks to run again.
		now := time.Now()
		for _, task := range h.scheduler.PopDue(now) {
			h.taskFile.Store(&task.file)
			h.taskLine.Store(int64(task.line))
			h.taskStartedAt.Store(time.Now().UnixNano())
			h.runScheduledTaskSafely(task, &h.keepRunning)

			if yourRunID != h.runID.Load() {
				return
			}
		}

		h.phase.Store(int32(PhaseFreeTimeCustomLogic))
		if h.cfg.freeTimeLogic != nil {
			h.cfg.freeTimeLogic(&h.keepRunning)
		}

		if yourRunID != h.runID.Load() {
			return
		}

		// Step 3: sleep until either a new message arrives, the idle wait
		// elapses, or the next scheduled task falls due — whichever comes
		// first — then load whatever arrived onto the work queue for the
		// next pass.
		wait := h.cfg.idleWaitTimeout
		if next, ok := h.scheduler.NextDeadline(); ok {
			if until := time.Until(next); until < wait {
				wait = until
			}
			if wait < 0 {
				wait = 0
			}
		}

		h.phase.Store(int32(PhaseSleep))
		h.box.WaitForNewMessagesTimeout(wait)

		if yourRunID != h.runID.Load() {
			return
		}

		h.box.Drain()
	}
}

func (h *Highway) runTaskSafely(task Task, keepRunning *atomic.Bool) {
	defer func() {
		if r := recover(); r != nil {
			ex := recoverAsException(r, task.File(), task.Line())
			ex.HighwayID = h.cfg.name
			h.cfg.exceptionHandler(ex)
		}
	}()
	task.Run(keepRunning)
}

func (h *Highway) runScheduledTaskSafely(task *ScheduledTask, keepRunning *atomic.Bool) {
	defer func() {
		if r := recover(); r != nil {
			ex := recoverAsException(r, task.file, task.line)
			ex.HighwayID = h.cfg.name
			h.cfg.exceptionHandler(ex)
		}
	}()
	reschedule, again := task.fn(keepRunning)
	if reschedule {
		h.scheduler.Schedule(task.fn, time.Now().Add(again), task.protector, task.file, task.line)
	}
}
