package graph

import (
	"context"
	"time"

	"github.com/joeycumines/go-microbatch"

	"github.com/highwaygo/highways/channel"
)

// directProgressPublisher forwards every NodeProgress to pub immediately,
// with no batching.
type directProgressPublisher struct {
	pub channel.Publisher[NodeProgress]
}

func (d directProgressPublisher) Publish(p NodeProgress) { d.pub.Publish(p) }

// NewProgressPublisher wraps pub as a ProgressPublisher that forwards
// every NodeProgress the moment it is reported.
func NewProgressPublisher(pub channel.Publisher[NodeProgress]) ProgressPublisher {
	return directProgressPublisher{pub: pub}
}

// BatchedProgressPublisher coalesces bursts of NodeProgress reports
// through a microbatch.Batcher before fanning them out to the wrapped
// publisher, trading a little delivery latency for far fewer Publish
// calls on graphs whose nodes transition quickly and often.
type BatchedProgressPublisher struct {
	batcher *microbatch.Batcher[NodeProgress]
}

// NewBatchedProgressPublisher builds a BatchedProgressPublisher that
// flushes to pub once a batch reaches maxSize reports or flushInterval
// has elapsed since the first unflushed one, whichever comes first.
func NewBatchedProgressPublisher(pub channel.Publisher[NodeProgress], maxSize int, flushInterval time.Duration) *BatchedProgressPublisher {
	batcher := microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:       maxSize,
		FlushInterval: flushInterval,
	}, func(_ context.Context, jobs []NodeProgress) error {
		for _, p := range jobs {
			pub.Publish(p)
		}
		return nil
	})
	return &BatchedProgressPublisher{batcher: batcher}
}

// Publish enqueues p for the next batch flush. It does not wait for pub
// to actually see it.
func (b *BatchedProgressPublisher) Publish(p NodeProgress) {
	_, _ = b.batcher.Submit(context.Background(), p)
}

// Close stops accepting new reports and waits for any pending batch to
// flush to the wrapped publisher.
func (b *BatchedProgressPublisher) Close() error {
	return b.batcher.Close()
}
