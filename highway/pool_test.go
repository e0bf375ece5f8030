package highway

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_RunsEveryTaskWithMultipleWorkers(t *testing.T) {
	p := NewPool(WithName("pool-distribute-test"), WithWorkerCount(4), WithCapacity(32))
	defer p.Destroy()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	var total atomic.Int64
	for i := 0; i < n; i++ {
		p.PostMayBlock(NewTask(func(*atomic.Bool) {
			total.Add(1)
			wg.Done()
		}, "pool_test.go", 0))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		require.Equal(t, int64(n), total.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not finish all tasks in time")
	}
}

func TestPool_DefaultsToOneWorker(t *testing.T) {
	p := NewPool(WithName("pool-default-test"))
	defer p.Destroy()
	require.Len(t, p.Phases(), 1)
}

func TestPool_DestroyStopsEveryWorker(t *testing.T) {
	p := NewPool(WithName("pool-destroy-test"), WithWorkerCount(3))
	p.Destroy()
	p.Destroy() // idempotent

	for _, phase := range p.Phases() {
		require.Equal(t, PhaseStopped, phase)
	}
}

func TestPool_ExceptionHandlerSeesRecoveredPanic(t *testing.T) {
	caught := make(chan *Exception, 1)
	p := NewPool(
		WithName("pool-panic-test"),
		WithExceptionHandler(func(ex *Exception) { caught <- ex }),
	)
	defer p.Destroy()

	p.PostMayBlock(NewTask(func(*atomic.Bool) {
		panic("pool boom")
	}, "pool_test.go", 0))

	select {
	case ex := <-caught:
		require.Equal(t, "panic: pool boom", ex.Message)
	case <-time.After(time.Second):
		t.Fatal("panic was not recovered into an exception")
	}
}
