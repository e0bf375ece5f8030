// Package channel implements the publisher/subscriber primitives used to
// wire nodes together: a Subscription is the receiving end of a channel, a
// Publisher is the sending end, and the various concrete types in this
// package trade off thread-safety, delivery ordering, and whether delivery
// is rescheduled onto a highway.
package channel

import (
	"sync"
	"sync/atomic"

	"github.com/highwaygo/highways/highway"
)

// Subscription is the receiving end of a channel of type P. Send delivers
// one publication and reports whether the subscriber is still alive and
// accepted it; a false return means the subscription is dead and callers
// holding a collection of subscriptions should drop it.
type Subscription[P any] interface {
	Send(p P) bool
}

// subscriptionFunc adapts a plain func into a Subscription.
type subscriptionFunc[P any] func(P) bool

func (f subscriptionFunc[P]) Send(p P) bool { return f(p) }

// DirectInline delivers synchronously on the publisher's own goroutine,
// grounded in the plain (unprotected) Subscription::create overload: the
// callback runs immediately, with no rescheduling.
func DirectInline[P any](fn func(P)) Subscription[P] {
	return subscriptionFunc[P](func(p P) bool {
		fn(p)
		return true
	})
}

// DirectForNewOnly wraps fn so it only runs when a delivery differs from
// the last one actually delivered (or is the first delivery); repeated
// identical publications are suppressed without calling fn again. Unlike
// a once-guard, Send always reports true — an unchanged value is not a
// dead subscriber, so this subscription is never pruned by a publisher
// that drops Subscriptions whose Send returns false.
func DirectForNewOnly[P comparable](fn func(P)) Subscription[P] {
	var mu sync.Mutex
	var last P
	var has bool
	return subscriptionFunc[P](func(p P) bool {
		mu.Lock()
		changed := !has || last != p
		last, has = p, true
		mu.Unlock()
		if changed {
			fn(p)
		}
		return true
	})
}

// HighwayDispatched reschedules delivery onto host: Send posts a Task that
// calls fn with the publication, rather than calling fn on the publisher's
// own goroutine. mayBlock selects between Highway.Post (drop on a full
// mailbox) and Highway.PostMayBlock (apply backpressure to the publisher).
func HighwayDispatched[P any](host *highway.Highway, fn func(P), mayBlock bool, file string, line int) Subscription[P] {
	return subscriptionFunc[P](func(p P) bool {
		task := highway.NewTask(func(*atomic.Bool) { fn(p) }, file, line)
		if mayBlock {
			host.PostMayBlock(task)
			return true
		}
		return host.Post(task)
	})
}

// ProtectedHighwayDispatched is HighwayDispatched guarded by protector:
// once protector.Lock() starts returning false, Send reports false without
// ever posting to host again, the Go equivalent of the protector parameter
// on Subscription::create's protected overloads.
func ProtectedHighwayDispatched[P any](host *highway.Highway, protector highway.Protector, fn func(P), mayBlock bool, file string, line int) Subscription[P] {
	return subscriptionFunc[P](func(p P) bool {
		if !protector.Lock() {
			return false
		}
		task := highway.NewProtectedTask(func(*atomic.Bool) { fn(p) }, protector, file, line)
		if mayBlock {
			host.PostMayBlock(task)
			return true
		}
		return host.Post(task)
	})
}
