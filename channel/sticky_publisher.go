package channel

import (
	"sync/atomic"

	"github.com/highwaygo/highways/highway"
)

// StickyPublisher is a HighwayPublisher that remembers the last
// publication and immediately replays it to any subscriber that joins
// afterward, grounded in channels/highway_sticky_publisher.h ("sticky"
// meaning late subscribers still see the most recent value instead of
// only future ones).
//
// Both Subscribe and Publish run entirely inside tasks posted to host,
// so the highway's own single-worker serialization is what makes
// concurrent Subscribe/Publish calls safe — no separate mutex is needed
// around subs/hasLast/last.
type StickyPublisher[P any] struct {
	host *highway.Highway
	file string
	line int

	subs    []Subscription[P]
	hasLast bool
	last    P
}

// NewStickyPublisher creates a StickyPublisher dispatching onto host.
func NewStickyPublisher[P any](host *highway.Highway, file string, line int) *StickyPublisher[P] {
	return &StickyPublisher[P]{host: host, file: file, line: line}
}

// Subscribe registers sub on the host highway. If a publication has
// already happened, sub receives it as part of the same task that
// decides whether to install it: a replay that sub's Send reports as
// failed means sub is already dead, so it is never added to subs in the
// first place, rather than being installed and only pruned on some
// future Publish.
func (s *StickyPublisher[P]) Subscribe(sub Subscription[P]) {
	s.host.PostMayBlock(highway.NewTask(func(*atomic.Bool) {
		if s.hasLast && !sub.Send(s.last) {
			return
		}
		s.subs = append(s.subs, sub)
	}, s.file, s.line))
}

// Publish posts a task onto the host highway that records publication as
// the sticky value and fans it out to every current subscriber.
func (s *StickyPublisher[P]) Publish(p P) {
	s.host.PostMayBlock(highway.NewTask(func(*atomic.Bool) {
		s.hasLast = true
		s.last = p

		live := s.subs[:0:0]
		for _, sub := range s.subs {
			if sub.Send(p) {
				live = append(live, sub)
			}
		}
		s.subs = live
	}, s.file, s.line))
}
