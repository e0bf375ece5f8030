package channel

import (
	"sync/atomic"

	"github.com/highwaygo/highways/highway"
)

// HighwayPublisher reschedules both Subscribe and Publish onto a single
// host Highway, so subscribers are always called from that highway's
// worker goroutine and never race with each other, with Subscribe, or
// with a concurrent Publish's own snapshot-then-write-back of subs,
// grounded in channels/highway_publisher.h.
type HighwayPublisher[P any] struct {
	host *highway.Highway
	file string
	line int

	subs []Subscription[P]
}

// NewHighwayPublisher creates a HighwayPublisher dispatching onto host.
func NewHighwayPublisher[P any](host *highway.Highway, file string, line int) *HighwayPublisher[P] {
	return &HighwayPublisher[P]{host: host, file: file, line: line}
}

// Subscribe posts a task onto the host highway that appends sub. Safe to
// call from any goroutine; the append itself only ever happens on the
// host highway's worker goroutine, the same one Publish's fan-out runs
// on, so there is no way for a concurrent Subscribe to be lost between a
// Publish's read of subs and its write-back.
func (h *HighwayPublisher[P]) Subscribe(sub Subscription[P]) {
	h.host.PostMayBlock(highway.NewTask(func(*atomic.Bool) {
		h.subs = append(h.subs, sub)
	}, h.file, h.line))
}

// Publish posts a task onto the host highway that fans publication out to
// every subscriber; Publish itself never blocks on subscriber code.
func (h *HighwayPublisher[P]) Publish(p P) {
	h.host.PostMayBlock(highway.NewTask(func(*atomic.Bool) {
		h.deliver(p)
	}, h.file, h.line))
}

func (h *HighwayPublisher[P]) deliver(p P) {
	live := h.subs[:0:0]
	for _, s := range h.subs {
		if s.Send(p) {
			live = append(live, s)
		}
	}
	h.subs = live
}
