// Package semaphore implements the counting semaphore contract spec'd for
// the mailbox's blocking producer/consumer handshake (spec.md §6): wait,
// a "keep one" signal that never accumulates more than a single spurious
// wakeup, signal-to-all, and a destroy that wakes and then refuses further
// waits. There is no timed wait; Mailbox.WaitForNewMessagesTimeout bounds
// a Wait with time.AfterFunc and SignalToAll instead.
//
// spec.md explicitly scopes platform-specific semaphore shims out of the
// core ("only the contracts the core consumes... are specified"), so this
// package provides one portable, stdlib-backed implementation rather than
// an OS-native primitive (eventfd, POSIX sem_t, ...): no generic semaphore
// library appears anywhere in the example pack, and a mutex/condition
// variable is the standard idiomatic Go shape for this contract.
package semaphore

import "sync"

// Semaphore is a counting semaphore with a sticky "keep one" signal and an
// explicit destroy that wakes every waiter and makes all subsequent waits
// return immediately.
type Semaphore struct {
	mu        sync.Mutex
	cond      *sync.Cond
	count     int
	destroyed bool
}

// New returns a Semaphore with an initial count of 0.
func New() *Semaphore {
	s := &Semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Signal increments the count by one and wakes at most one waiter.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// SignalKeepOne increments the count to at most one. This is the
// "sticky" signal mailboxes use when pushing a message: it must wake a
// sleeping consumer, but must never let the count climb unboundedly if the
// consumer is already awake and draining faster than producers can push.
func (s *Semaphore) SignalKeepOne() {
	s.mu.Lock()
	if s.count == 0 {
		s.count = 1
	}
	s.mu.Unlock()
	s.cond.Signal()
}

// SignalToAll wakes every current waiter without necessarily granting them
// all a permit; used during shutdown to make sure nothing is left
// blocked.
func (s *Semaphore) SignalToAll() {
	s.mu.Lock()
	s.count += 1
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Wait blocks until the count is positive (consuming one permit) or the
// semaphore is destroyed. It returns false only if the semaphore was
// destroyed without ever granting a permit.
func (s *Semaphore) Wait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 && !s.destroyed {
		s.cond.Wait()
	}
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// Destroy wakes every waiter and causes all subsequent Wait calls to
// return immediately: true while a permit is still left (consuming it),
// false once none is. Destroy is idempotent.
func (s *Semaphore) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
