package channel

// ConstPublisher is an immutable publisher that holds a single,
// already-resolved value: every Subscribe call delivers it once,
// synchronously, and Publish is a no-op. It is grounded in
// channels/const_publisher.h; graph.SeedInput uses it to feed a fixed
// value into a Node's input when there is no live upstream producer to
// Subscribe instead.
type ConstPublisher[P any] struct {
	value P
}

// NewConstPublisher returns a ConstPublisher fixed to value.
func NewConstPublisher[P any](value P) *ConstPublisher[P] {
	return &ConstPublisher[P]{value: value}
}

// Subscribe delivers the fixed value to sub immediately.
func (c *ConstPublisher[P]) Subscribe(sub Subscription[P]) {
	sub.Send(c.value)
}

// Publish is a no-op: a ConstPublisher's value never changes after
// construction.
func (c *ConstPublisher[P]) Publish(P) {}
