package graph

import (
	"context"
	"sync"

	"github.com/highwaygo/highways/channel"
)

// ResultNode is a terminal node that captures exactly one value and lets
// any number of goroutines block on it, grounded in
// execution_tree/ResultWaitFutureNode.h's get_result/set_result pair. The
// first delivery wins; later deliveries are ignored until ResetResult.
type ResultNode[InParam any] struct {
	mu    sync.Mutex
	ready chan struct{}
	value InParam
}

// NewResultNode creates a ResultNode with no value yet set.
func NewResultNode[InParam any]() *ResultNode[InParam] {
	return &ResultNode[InParam]{ready: make(chan struct{})}
}

// Subscription returns the Subscription upstream publishers deliver the
// awaited value through.
func (n *ResultNode[InParam]) Subscription() channel.Subscription[InParam] {
	return channel.DirectInline(n.setResult)
}

func (n *ResultNode[InParam]) setResult(v InParam) {
	n.mu.Lock()
	defer n.mu.Unlock()
	select {
	case <-n.ready:
		return
	default:
	}
	n.value = v
	close(n.ready)
}

// ResultReady reports whether a value has been delivered since
// construction or the last ResetResult.
func (n *ResultNode[InParam]) ResultReady() bool {
	n.mu.Lock()
	ready := n.ready
	n.mu.Unlock()
	select {
	case <-ready:
		return true
	default:
		return false
	}
}

// GetResult blocks until a value is delivered or ctx is done, reporting
// false in the latter case.
func (n *ResultNode[InParam]) GetResult(ctx context.Context) (InParam, bool) {
	n.mu.Lock()
	ready := n.ready
	n.mu.Unlock()

	select {
	case <-ready:
		n.mu.Lock()
		v := n.value
		n.mu.Unlock()
		return v, true
	case <-ctx.Done():
		var zero InParam
		return zero, false
	}
}

// ResetResult clears any delivered value, so the ResultNode can be reused
// for a new round of work.
func (n *ResultNode[InParam]) ResetResult() {
	n.mu.Lock()
	n.ready = make(chan struct{})
	var zero InParam
	n.value = zero
	n.mu.Unlock()
}
