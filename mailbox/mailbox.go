// Package mailbox implements a bounded, lock-free FIFO mailbox: many
// producers may send without ever blocking each other, while a single
// consumer drains messages in the order they were sent.
//
// A Mailbox holds three intrusive stacks sharing one arena.Arena: messages
// waiting to be picked up by the consumer (pending), messages already
// claimed by the consumer for processing (queue), and holders returned by
// the consumer for reuse (free). Bounding the arena's capacity means a slow
// consumer applies backpressure to producers instead of letting memory grow
// without limit.
package mailbox

import (
	"time"

	"github.com/highwaygo/highways/internal/arena"
	"github.com/highwaygo/highways/internal/semaphore"
)

// defaultCapacity mirrors the original mailbox's default holder ceiling.
const defaultCapacity = 1024

// Mailbox is a bounded FIFO mailbox for values of type T. The zero value
// is not usable; construct one with New.
type Mailbox[T any] struct {
	arena *arena.Arena[T]

	pending    arena.Stack[T]
	pendingSem *semaphore.Semaphore
	queue      arena.Stack[T]
	queueSem   *semaphore.Semaphore
	free       arena.Stack[T]
	freeSem    *semaphore.Semaphore
}

// New creates a Mailbox that allocates at most capacity holders (1024 when
// capacity is 0) until SetCapacity raises that ceiling. Holders are
// allocated lazily on first use and recycled
// through the free pool afterward, so most workloads never approach the
// capacity ceiling.
func New[T any](capacity uint32) *Mailbox[T] {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	return &Mailbox[T]{
		arena:      arena.NewArena[T](capacity),
		pendingSem: semaphore.New(),
		queueSem:   semaphore.New(),
		freeSem:    semaphore.New(),
	}
}

// Send delivers v without ever blocking the caller, reporting
// ResultOKCreatedNew when a brand-new holder had to be allocated,
// ResultOK when a recycled holder from the free pool was reused, and
// ResultFailNoMemory when the arena is exhausted and the free pool is
// empty, i.e. the mailbox is genuinely full.
func (m *Mailbox[T]) Send(v T) ResultCode {
	h := m.free.Pop(m.arena)
	createdNew := false
	if h == nil {
		h = m.arena.Allocate()
		if h == nil {
			return ResultFailNoMemory
		}
		createdNew = true
	}
	h.Value = v
	m.pending.Push(h)
	m.pendingSem.SignalKeepOne()
	if createdNew {
		return ResultOKCreatedNew
	}
	return ResultOK
}

// SendMayFail delivers v without ever blocking the caller. It returns false
// only when every holder is both allocated and in use, i.e. the mailbox is
// genuinely full; callers that can't tolerate drops should use
// SendMayBlocked instead.
func (m *Mailbox[T]) SendMayFail(v T) bool {
	return m.Send(v).OK()
}

// SendMayBlocked delivers v, blocking the caller if the mailbox is full
// until the consumer frees a holder. It never drops a message.
func (m *Mailbox[T]) SendMayBlocked(v T) {
	h := m.free.Pop(m.arena)
	if h == nil {
		h = m.arena.Allocate()
		if h == nil {
			for h == nil && m.freeSem.Wait() {
				h = m.free.Pop(m.arena)
			}
		}
	}
	if h == nil {
		// freeSem.Wait returned false: the mailbox was destroyed while we
		// were waiting for capacity.
		return
	}
	h.Value = v
	m.pending.Push(h)
	m.pendingSem.SignalKeepOne()
}

// WaitForNewMessages blocks until at least one message has been sent since
// the last drain, or the mailbox is destroyed.
func (m *Mailbox[T]) WaitForNewMessages() {
	if m.pending.Empty() {
		m.pendingSem.Wait()
	}
}

// WaitForNewMessagesTimeout is WaitForNewMessages bounded by a deadline; it
// is used by the highway's scheduler to wake up in time for the next
// scheduled task even if no message ever arrives.
func (m *Mailbox[T]) WaitForNewMessagesTimeout(d time.Duration) {
	if !m.pending.Empty() {
		return
	}
	timer := time.AfterFunc(d, m.pendingSem.SignalToAll)
	defer timer.Stop()
	m.pendingSem.Wait()
}

// Drain moves every pending message onto the work queue, preserving send
// order, and wakes the consumer's queue semaphore once per message moved.
// It returns the number of messages moved.
func (m *Mailbox[T]) Drain() int {
	moved := 0
	var staging, reversed arena.Stack[T]
	m.pending.MoveTo(m.arena, &staging)
	for {
		h := staging.Pop(m.arena)
		if h == nil {
			break
		}
		reversed.Push(h)
		moved++
	}
	// reversed holds the newest message on top; MoveTo flips it once more
	// so the oldest message ends up on top of the queue for PopMessage.
	reversed.MoveTo(m.arena, &m.queue)
	for i := 0; i < moved; i++ {
		m.queueSem.Signal()
	}
	return moved
}

// WorkerWaitForMessages blocks the consumer until the work queue has at
// least one entry available via PopMessage, or the mailbox is destroyed.
func (m *Mailbox[T]) WorkerWaitForMessages() {
	m.queueSem.Wait()
}

// PopMessage removes and returns the next queued holder, or nil if the
// queue is currently empty. The caller owns the returned holder and must
// eventually pass it to Free.
func (m *Mailbox[T]) PopMessage() *arena.Holder[T] {
	return m.queue.Pop(m.arena)
}

// Free returns a holder to the pool for reuse and wakes one producer that
// may be blocked in SendMayBlocked waiting for capacity.
func (m *Mailbox[T]) Free(h *arena.Holder[T]) {
	m.free.Push(h)
	m.freeSem.Signal()
}

// SignalToAll wakes every goroutine currently blocked on any of the
// mailbox's three semaphores without requiring a matching event; used
// during an orderly shutdown to unstick a consumer or producer that is
// waiting on a condition that will now never naturally occur.
func (m *Mailbox[T]) SignalToAll() {
	m.pendingSem.SignalToAll()
	m.queueSem.SignalToAll()
	m.freeSem.SignalToAll()
}

// Destroy wakes every blocked goroutine and causes all future waits on this
// mailbox to return immediately. Destroy is idempotent and irreversible.
func (m *Mailbox[T]) Destroy() {
	m.pendingSem.Destroy()
	m.queueSem.Destroy()
	m.freeSem.Destroy()
}

// Nudge wakes one goroutine blocked in WaitForNewMessages or
// WaitForNewMessagesTimeout without there being an actual message to
// deliver, via the same sticky signal a Send uses; if nobody is waiting,
// the next such wait returns at once. Highway.Schedule calls it from a
// task running on the worker, so the worker's next sleep returns
// immediately and re-reads the scheduler's next deadline.
func (m *Mailbox[T]) Nudge() {
	m.pendingSem.SignalKeepOne()
}

// SetCapacity raises the mailbox's holder ceiling to at least n by
// growing its backing arena. Capacity never shrinks; calling SetCapacity
// with n at or below the current capacity is a no-op.
func (m *Mailbox[T]) SetCapacity(n uint32) {
	cur := m.arena.Capacity()
	if n <= cur {
		return
	}
	m.arena.Grow(n - cur)
}
