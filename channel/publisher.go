package channel

import (
	"sync"
	"sync/atomic"

	"github.com/highwaygo/highways/highway"
)

// Publisher is the sending end of a channel of type P.
type Publisher[P any] interface {
	Publish(p P)
}

// ManyForOne fans many publisher goroutines into one subscription. It adds
// no synchronization of its own beyond what the wrapped Subscription
// already provides, grounded in PublishManyForOne.h which is itself a
// direct pass-through to a single Subscription.
type ManyForOne[P any] struct {
	sub Subscription[P]
}

// NewManyForOne wraps sub.
func NewManyForOne[P any](sub Subscription[P]) *ManyForOne[P] {
	return &ManyForOne[P]{sub: sub}
}

// Publish delivers publication to the wrapped subscription.
func (m *ManyForOne[P]) Publish(p P) {
	m.sub.Send(p)
}

// ManyForMany fans out every publication to every subscriber. Safe for
// concurrent Subscribe and Publish calls from any number of goroutines,
// grounded in PublishManyForMany.h's thread-safe stack of subscriptions.
// Unlike ManyForManyRemovable and OneForMany, ManyForMany never prunes a
// subscription whose Send returns false — pruning is those two types'
// defining behavior, not this one's; a ManyForMany subscriber that wants
// to stop receiving publications removes itself some other way (there
// is no id to unsubscribe by here in the first place).
type ManyForMany[P any] struct {
	mu   sync.Mutex
	subs []Subscription[P]
}

// NewManyForMany creates an empty ManyForMany publisher.
func NewManyForMany[P any]() *ManyForMany[P] {
	return &ManyForMany[P]{}
}

// Subscribe registers sub to receive future publications.
func (m *ManyForMany[P]) Subscribe(sub Subscription[P]) {
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
}

// Publish delivers publication to every currently subscribed
// Subscription. A Send that returns false is not treated as a reason to
// drop the subscription.
func (m *ManyForMany[P]) Publish(p P) {
	m.mu.Lock()
	subs := append([]Subscription[P](nil), m.subs...)
	m.mu.Unlock()

	for _, s := range subs {
		s.Send(p)
	}
}

// removableSubscription tags a Subscription with an id so it can be
// explicitly removed, rather than waiting for Send to fail.
type removableSubscription[P any] struct {
	id  uint64
	sub Subscription[P]
}

// ManyForManyRemovable is ManyForMany plus explicit, id-based unsubscribe,
// grounded in PublishManyForManyCanUnSubscribe.h.
type ManyForManyRemovable[P any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []removableSubscription[P]
}

// NewManyForManyRemovable creates an empty ManyForManyRemovable publisher.
func NewManyForManyRemovable[P any]() *ManyForManyRemovable[P] {
	return &ManyForManyRemovable[P]{}
}

// Subscribe registers sub and returns an id that can later be passed to
// Unsubscribe.
func (m *ManyForManyRemovable[P]) Subscribe(sub Subscription[P]) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, removableSubscription[P]{id: id, sub: sub})
	return id
}

// Unsubscribe removes the subscription registered under id, if any.
func (m *ManyForManyRemovable[P]) Unsubscribe(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subs {
		if s.id == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers publication to every subscribed Subscription, pruning
// both explicitly-unsubscribed and dead ones.
func (m *ManyForManyRemovable[P]) Publish(p P) {
	m.mu.Lock()
	live := m.subs[:0:0]
	for _, s := range m.subs {
		if s.sub.Send(p) {
			live = append(live, s)
		}
	}
	m.subs = live
	m.mu.Unlock()
}

// OneForMany fans out to many subscribers under the assumption that
// Publish is only ever called by one logical thread over the publisher's
// whole lifetime (publishers are expected to serialize on their own host
// highway), which lets it hold its lock only to copy the subscriber list
// and to store the survivors back, never while delivering. That
// invariant is checked, not merely assumed, and checked the way it
// actually needs to be: the first goroutine to call Publish is recorded,
// and every later call — whether it overlaps the first or arrives
// strictly after it has returned — panics if it comes from a different
// goroutine. A bare overlap guard only catches two Publish calls in
// flight at once; it says nothing about two calls from different
// goroutines that happen never to overlap, which this is meant to catch
// too. Subscribe remains safe to call from any goroutine.
type OneForMany[P any] struct {
	firstGoroutineID atomic.Uint64 // 0 means unset
	mu               sync.Mutex    // guards subs against concurrent Subscribe only
	subs             []Subscription[P]
}

// NewOneForMany creates an empty OneForMany publisher.
func NewOneForMany[P any]() *OneForMany[P] {
	return &OneForMany[P]{}
}

// Subscribe registers sub to receive future publications.
func (o *OneForMany[P]) Subscribe(sub Subscription[P]) {
	o.mu.Lock()
	o.subs = append(o.subs, sub)
	o.mu.Unlock()
}

// Publish delivers publication to every currently subscribed
// Subscription, pruning any whose Send reports it is no longer alive. It
// panics if called from any goroutine other than whichever one called
// Publish first.
func (o *OneForMany[P]) Publish(p P) {
	gid := highway.GoroutineID()
	if !o.firstGoroutineID.CompareAndSwap(0, gid) && o.firstGoroutineID.Load() != gid {
		panic("channel: OneForMany.Publish called from a different goroutine than its first caller")
	}

	o.mu.Lock()
	subs := append([]Subscription[P](nil), o.subs...)
	o.mu.Unlock()

	live := subs[:0:0]
	for _, s := range subs {
		if s.Send(p) {
			live = append(live, s)
		}
	}
	o.mu.Lock()
	// Keep anything Subscribe appended while delivery was in progress.
	o.subs = append(live, o.subs[len(subs):]...)
	o.mu.Unlock()
}
