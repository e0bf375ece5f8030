package highway

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHighway_PostRunsTask(t *testing.T) {
	h := New(WithName("post-test"))
	defer h.Destroy()

	done := make(chan int, 1)
	require.True(t, h.Post(NewTask(func(*atomic.Bool) {
		done <- 42
	}, "highway_test.go", 0)))

	select {
	case v := <-done:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for posted task")
	}
}

func TestHighway_PostResultReportsMailboxState(t *testing.T) {
	h := New(WithName("post-result-test"), WithCapacity(4))
	defer h.Destroy()

	code := h.PostResult(NewTask(func(*atomic.Bool) {}, "highway_test.go", 0))
	require.True(t, code.OK())
}

// TestHighway_TwoHighwaysChatUntilCounterReaches200 is the two-highway
// "chat" scenario: each highway, on receiving a message, increments a
// shared counter and bounces a message back to the other highway, until
// the counter reaches 200.
func TestHighway_TwoHighwaysChatUntilCounterReaches200(t *testing.T) {
	a := New(WithName("chat-a"))
	b := New(WithName("chat-b"))
	defer a.Destroy()
	defer b.Destroy()

	var counter atomic.Int64
	const target = 200
	done := make(chan struct{})

	var bounce func(from, to *Highway)
	bounce = func(from, to *Highway) {
		n := counter.Add(1)
		if n >= target {
			close(done)
			return
		}
		to.PostMayBlock(NewTask(func(*atomic.Bool) {
			bounce(to, from)
		}, "highway_test.go", 0))
	}

	a.PostMayBlock(NewTask(func(*atomic.Bool) {
		bounce(a, b)
	}, "highway_test.go", 0))

	select {
	case <-done:
		require.GreaterOrEqual(t, counter.Load(), int64(target))
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out, counter stuck at %d", counter.Load())
	}
}

func TestHighway_FlushTasksWaitsForAlreadyPostedWork(t *testing.T) {
	h := New(WithName("flush-test"), WithIdleWaitTimeout(50*time.Millisecond))
	defer h.Destroy()

	var ran atomic.Bool
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		time.Sleep(20 * time.Millisecond)
		ran.Store(true)
	}, "highway_test.go", 0))

	h.FlushTasks()
	require.True(t, ran.Load())
}

func TestHighway_FlushTasksFromWorkerGoroutineIsNoop(t *testing.T) {
	h := New(WithName("flush-self-test"))
	defer h.Destroy()

	done := make(chan struct{})
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		h.FlushTasks() // must not deadlock
		close(done)
	}, "highway_test.go", 0))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FlushTasks from the worker goroutine deadlocked")
	}
}

func TestHighway_CurrentThreadIsWorker(t *testing.T) {
	h := New(WithName("worker-id-test"))
	defer h.Destroy()

	require.False(t, h.CurrentThreadIsWorker())

	result := make(chan bool, 1)
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		result <- h.CurrentThreadIsWorker()
	}, "highway_test.go", 0))

	select {
	case isWorker := <-result:
		require.True(t, isWorker)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestHighway_ScheduleRunsAfterDelay(t *testing.T) {
	h := New(WithName("schedule-test"), WithIdleWaitTimeout(500*time.Millisecond))
	defer h.Destroy()

	start := time.Now()
	done := make(chan time.Duration, 1)
	h.ScheduleIn(func(*atomic.Bool) (bool, time.Duration) {
		done <- time.Since(start)
		return false, 0
	}, 30*time.Millisecond, nil, "highway_test.go", 0)

	select {
	case elapsed := <-done:
		require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("scheduled task never ran")
	}
}

func TestHighway_ScheduleRepeatsUntilToldToStop(t *testing.T) {
	h := New(WithName("schedule-repeat-test"), WithIdleWaitTimeout(10*time.Millisecond))
	defer h.Destroy()

	var count atomic.Int32
	doneCh := make(chan struct{})
	h.ScheduleIn(func(*atomic.Bool) (bool, time.Duration) {
		if count.Add(1) >= 3 {
			close(doneCh)
			return false, 0
		}
		return true, 5 * time.Millisecond
	}, 5*time.Millisecond, nil, "highway_test.go", 0)

	select {
	case <-doneCh:
		require.Equal(t, int32(3), count.Load())
	case <-time.After(time.Second):
		t.Fatal("repeating scheduled task never reached its count")
	}
}

func TestHighway_ScheduleDropsTaskWhenProtectorBreaks(t *testing.T) {
	h := New(WithName("schedule-protector-test"), WithIdleWaitTimeout(10*time.Millisecond))
	defer h.Destroy()

	protector := NewSelfProtector()
	protector.Release()

	ran := make(chan struct{}, 1)
	h.ScheduleIn(func(*atomic.Bool) (bool, time.Duration) {
		ran <- struct{}{}
		return false, 0
	}, 5*time.Millisecond, protector, "highway_test.go", 0)

	select {
	case <-ran:
		t.Fatal("task with a broken protector must not run")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHighway_SetCapacityAllowsMoreOutstandingTasks(t *testing.T) {
	h := New(WithName("capacity-test"), WithCapacity(2))
	defer h.Destroy()

	h.SetCapacity(16)

	release := make(chan struct{})
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		<-release
	}, "highway_test.go", 0))

	var posted atomic.Int32
	for i := 0; i < 10; i++ {
		h.Post(NewTask(func(*atomic.Bool) { posted.Add(1) }, "highway_test.go", 0))
	}
	close(release)
	h.FlushTasks()
	require.Equal(t, int32(10), posted.Load())
}

func TestHighway_DestroyStopsTheWorker(t *testing.T) {
	h := New(WithName("destroy-test"))
	h.Destroy()
	h.Destroy() // idempotent

	require.Equal(t, PhaseStopped, h.Phase())
}

func TestHighway_SelfCheckReportsStuckTask(t *testing.T) {
	var reported atomic.Pointer[Exception]
	h := New(
		WithName("stuck-test"),
		WithMaxTaskExecutionTime(10*time.Millisecond),
		WithExceptionHandler(func(ex *Exception) { reported.Store(ex) }),
	)
	defer h.Destroy()

	release := make(chan struct{})
	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		<-release
	}, "highway_test.go", 0))

	require.Eventually(t, func() bool {
		h.SelfCheck()
		ex := reported.Load()
		return ex != nil && ex.Message == "task stuck"
	}, time.Second, 5*time.Millisecond)

	close(release)
}

func TestHighway_ExceptionHandlerSeesRecoveredPanic(t *testing.T) {
	caught := make(chan *Exception, 1)
	h := New(
		WithName("panic-test"),
		WithExceptionHandler(func(ex *Exception) { caught <- ex }),
	)
	defer h.Destroy()

	h.PostMayBlock(NewTask(func(*atomic.Bool) {
		panic("boom")
	}, "highway_test.go", 0))

	select {
	case ex := <-caught:
		require.Equal(t, "panic: boom", ex.Message)
	case <-time.After(time.Second):
		t.Fatal("panic was not recovered into an exception")
	}
}

// TestHighway_ABAStress hammers a single highway with many concurrent
// producers, each posting many tasks that each resolve exactly one
// promise, to exercise the mailbox/arena holder-reuse path (the same
// holders get allocated, freed, and reallocated under load) for any ABA
// leak: a promise resolved more than once, or never.
func TestHighway_ABAStress(t *testing.T) {
	h := New(WithName("aba-stress-test"), WithCapacity(64))
	defer h.Destroy()

	const goroutines = 40
	const perGoroutine = 1000

	var wg sync.WaitGroup
	var fulfilledTwice atomic.Int64
	var neverFulfilled atomic.Int64

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				var fulfilled atomic.Int32
				done := make(chan struct{})
				h.PostMayBlock(NewTask(func(*atomic.Bool) {
					if fulfilled.Add(1) != 1 {
						fulfilledTwice.Add(1)
					}
					close(done)
				}, "highway_test.go", 0))

				select {
				case <-done:
				case <-time.After(5 * time.Second):
					neverFulfilled.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(0), fulfilledTwice.Load())
	require.Equal(t, int64(0), neverFulfilled.Load())
}
