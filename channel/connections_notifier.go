package channel

import "sync"

// connSub pairs a Subscription with the id ConnectionsNotifier assigned
// it, so Publish-time pruning can report which id dropped to zero.
type connSub[P any] struct {
	id  uint64
	sub Subscription[P]
}

// ConnectionsNotifier wraps a publisher so interested code can be told
// when the subscriber count transitions between zero and non-zero,
// grounded in PublishManyForManyWithConnectionsNotifier.h. Unlike a
// plain per-call hook, onConnect fires only on the 0->1 transition and
// onDisconnect only on the ->0 transition — a second Subscribe while one
// subscriber is already live, or an Unsubscribe that still leaves others
// connected, reports nothing.
type ConnectionsNotifier[P any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []connSub[P]

	onConnect    func(id uint64)
	onDisconnect func(id uint64)
}

// NewConnectionsNotifier creates an empty ConnectionsNotifier.
func NewConnectionsNotifier[P any]() *ConnectionsNotifier[P] {
	return &ConnectionsNotifier[P]{}
}

// OnConnect sets the callback invoked when the subscriber count goes
// from zero to one. It is passed the id of the subscription that caused
// the transition.
func (c *ConnectionsNotifier[P]) OnConnect(fn func(id uint64)) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// OnDisconnect sets the callback invoked when the subscriber count drops
// to zero, whether by explicit Unsubscribe or because Publish found the
// last remaining subscription's Send returning false. It is passed the
// id of the subscription whose removal caused the transition.
func (c *ConnectionsNotifier[P]) OnDisconnect(fn func(id uint64)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// Subscribe registers sub and returns an id that can later be passed to
// Unsubscribe.
func (c *ConnectionsNotifier[P]) Subscribe(sub Subscription[P]) uint64 {
	c.mu.Lock()
	wasEmpty := len(c.subs) == 0
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, connSub[P]{id: id, sub: sub})
	cb := c.onConnect
	c.mu.Unlock()

	if wasEmpty && cb != nil {
		cb(id)
	}
	return id
}

// Unsubscribe removes the subscription registered under id, if any.
func (c *ConnectionsNotifier[P]) Unsubscribe(id uint64) {
	c.mu.Lock()
	removed := false
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			removed = true
			break
		}
	}
	nowEmpty := removed && len(c.subs) == 0
	cb := c.onDisconnect
	c.mu.Unlock()

	if nowEmpty && cb != nil {
		cb(id)
	}
}

// Publish fans publication out to every live subscriber, pruning any
// whose Send reports it is no longer alive. If pruning empties the
// subscriber set, onDisconnect fires with the id of whichever pruned
// subscription was observed last.
func (c *ConnectionsNotifier[P]) Publish(p P) {
	c.mu.Lock()
	snapshot := append([]connSub[P](nil), c.subs...)
	c.mu.Unlock()

	dead := make(map[uint64]bool)
	var lastDead uint64
	for _, s := range snapshot {
		if !s.sub.Send(p) {
			dead[s.id] = true
			lastDead = s.id
		}
	}
	if len(dead) == 0 {
		return
	}

	c.mu.Lock()
	wasEmpty := len(c.subs) == 0
	live := c.subs[:0:0]
	for _, s := range c.subs {
		if !dead[s.id] {
			live = append(live, s)
		}
	}
	c.subs = live
	nowEmpty := !wasEmpty && len(c.subs) == 0
	cb := c.onDisconnect
	c.mu.Unlock()

	if nowEmpty && cb != nil {
		cb(lastDead)
	}
}
