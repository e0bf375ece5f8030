package highway

import (
	"sync"
	"sync/atomic"

	"github.com/highwaygo/highways/mailbox"
)

// Pool is a multi-worker task runner sharing one mailbox: several worker
// goroutines block on the mailbox's work-queue semaphore and race to pop
// the next task, instead of each owning a private queue. Grounded in the
// original library's distinction between SingleThreadHighWay (a tight
// non-blocking pop loop) and the worker-pool path that actually uses
// MailBox::worker_wait_for_messages/signal_to_work_queue_semaphore.
type Pool struct {
	cfg config
	box *mailbox.Mailbox[Task]

	runID       atomic.Uint64
	keepRunning atomic.Bool

	phases []atomic.Int32

	stoppedOnce sync.Once
	wg          sync.WaitGroup
}

// NewPool creates a Pool and starts cfg.workerCount worker goroutines (at
// least 1).
func NewPool(opts ...Option) *Pool {
	cfg := defaultConfig()
	cfg.name = "Pool"
	for _, o := range opts {
		o.apply(&cfg)
	}
	if cfg.workerCount == 0 {
		cfg.workerCount = 1
	}
	if cfg.exceptionHandler == nil {
		cfg.exceptionHandler = defaultExceptionHandler(cfg.logger)
	}

	p := &Pool{
		cfg:    cfg,
		box:    mailbox.New[Task](cfg.capacity),
		phases: make([]atomic.Int32, cfg.workerCount),
	}
	p.keepRunning.Store(true)
	for i := uint32(0); i < cfg.workerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(int(i), p.runID.Load())
	}
	// The drain side still needs to run: workers block on the work-queue
	// semaphore, so one coordinator goroutine moves pending sends onto the
	// work queue and signals it, the role load_new_messages plays in the
	// single-threaded loop but here decoupled from any one worker.
	p.wg.Add(1)
	go p.runLoader(p.runID.Load())
	return p
}

// Post enqueues task without blocking, returning false if the mailbox is
// full.
func (p *Pool) Post(task Task) bool {
	return p.box.SendMayFail(task)
}

// PostMayBlock enqueues task, blocking the caller if the mailbox is
// temporarily full.
func (p *Pool) PostMayBlock(task Task) {
	p.box.SendMayBlocked(task)
}

// Destroy stops every worker goroutine and the loader goroutine, and waits
// for them to exit.
func (p *Pool) Destroy() {
	p.stoppedOnce.Do(func() {
		p.keepRunning.Store(false)
		p.runID.Add(1)
		p.box.Destroy()
		p.wg.Wait()
	})
}

func (p *Pool) runLoader(yourRunID uint64) {
	defer p.wg.Done()
	for yourRunID == p.runID.Load() {
		p.box.WaitForNewMessagesTimeout(p.cfg.idleWaitTimeout)
		if yourRunID != p.runID.Load() {
			return
		}
		p.box.Drain()
	}
}

func (p *Pool) runWorker(slot int, yourRunID uint64) {
	defer p.wg.Done()
	defer p.phases[slot].Store(int32(PhaseStopped))

	for yourRunID == p.runID.Load() {
		p.phases[slot].Store(int32(PhaseSleep))
		p.box.WorkerWaitForMessages()

		holder := p.box.PopMessage()
		if holder == nil {
			if yourRunID != p.runID.Load() {
				return
			}
			continue
		}

		p.phases[slot].Store(int32(PhaseMailBoxMessage))
		task := holder.Value
		p.runTaskSafely(task, &p.keepRunning)
		p.box.Free(holder)
	}
}

func (p *Pool) runTaskSafely(task Task, keepRunning *atomic.Bool) {
	defer func() {
		if r := recover(); r != nil {
			ex := recoverAsException(r, task.File(), task.Line())
			ex.HighwayID = p.cfg.name
			p.cfg.exceptionHandler(ex)
		}
	}()
	task.Run(keepRunning)
}

// Phases reports each worker's current activity, in worker-slot order.
func (p *Pool) Phases() []Phase {
	out := make([]Phase, len(p.phases))
	for i := range p.phases {
		out[i] = Phase(p.phases[i].Load())
	}
	return out
}
