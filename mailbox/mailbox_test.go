package mailbox

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailbox_SendMayFailThenDrainPreservesOrder(t *testing.T) {
	m := New[int](8)
	for i := 0; i < 5; i++ {
		require.True(t, m.SendMayFail(i))
	}
	require.Equal(t, 5, m.Drain())

	for i := 0; i < 5; i++ {
		m.WorkerWaitForMessages()
		h := m.PopMessage()
		require.NotNil(t, h)
		require.Equal(t, i, h.Value)
		m.Free(h)
	}
}

func TestMailbox_SendMayFailReturnsFalseWhenFull(t *testing.T) {
	m := New[int](2)
	require.True(t, m.SendMayFail(1))
	require.True(t, m.SendMayFail(2))
	require.False(t, m.SendMayFail(3))
}

func TestMailbox_FreeRecyclesHolderBeyondCapacity(t *testing.T) {
	m := New[int](1)
	require.True(t, m.SendMayFail(1))
	require.False(t, m.SendMayFail(2))

	m.Drain()
	h := m.PopMessage()
	require.NotNil(t, h)
	m.Free(h)

	require.True(t, m.SendMayFail(2))
}

func TestMailbox_WaitForNewMessagesWakesOnSend(t *testing.T) {
	m := New[int](4)
	done := make(chan struct{})
	go func() {
		m.WaitForNewMessages()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	m.SendMayFail(1)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForNewMessages did not wake on send")
	}
}

func TestMailbox_SendMayBlockedWaitsForCapacityThenSucceeds(t *testing.T) {
	m := New[int](1)
	require.True(t, m.SendMayFail(1))

	blocked := make(chan struct{})
	go func() {
		m.SendMayBlocked(2)
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("SendMayBlocked returned before capacity was freed")
	case <-time.After(20 * time.Millisecond):
	}

	m.Drain()
	h := m.PopMessage()
	require.NotNil(t, h)
	require.Equal(t, 1, h.Value)
	m.Free(h)

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("SendMayBlocked did not unblock after Free")
	}
}

func TestMailbox_DestroyUnblocksWaiters(t *testing.T) {
	m := New[int](4)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.WorkerWaitForMessages()
	}()

	time.Sleep(10 * time.Millisecond)
	m.Destroy()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Destroy did not unblock WorkerWaitForMessages")
	}
}

func TestMailbox_SendReportsCreatedNewThenRecycled(t *testing.T) {
	m := New[int](4)

	require.Equal(t, ResultOKCreatedNew, m.Send(1))

	m.Drain()
	h := m.PopMessage()
	require.NotNil(t, h)
	m.Free(h)

	require.Equal(t, ResultOK, m.Send(2))
}

func TestMailbox_SendReportsFailNoMemoryWhenExhausted(t *testing.T) {
	m := New[int](1)
	require.Equal(t, ResultOKCreatedNew, m.Send(1))
	require.Equal(t, ResultFailNoMemory, m.Send(2))
}

func TestMailbox_NudgeWakesWaiterWithoutAMessage(t *testing.T) {
	m := New[int](4)
	done := make(chan struct{})
	go func() {
		m.WaitForNewMessagesTimeout(time.Second)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	m.Nudge()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Nudge did not wake a waiter")
	}
	require.Equal(t, 0, m.Drain(), "Nudge must not create a deliverable message")
}

func TestMailbox_SetCapacityAllowsMoreOutstandingSends(t *testing.T) {
	m := New[int](2)
	require.True(t, m.SendMayFail(1))
	require.True(t, m.SendMayFail(2))
	require.False(t, m.SendMayFail(3))

	m.SetCapacity(4)
	require.True(t, m.SendMayFail(3))
	require.True(t, m.SendMayFail(4))
	require.False(t, m.SendMayFail(5))
}

func TestMailbox_SetCapacityAtOrBelowCurrentIsNoop(t *testing.T) {
	m := New[int](4)
	m.SetCapacity(2)
	m.SetCapacity(4)

	for i := 0; i < 4; i++ {
		require.True(t, m.SendMayFail(i))
	}
	require.False(t, m.SendMayFail(4))
}

func TestMailbox_ConcurrentProducersSingleConsumerNoLoss(t *testing.T) {
	const producers = 20
	const perProducer = 200

	m := New[int](producers * perProducer)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !m.SendMayFail(base + i) {
					time.Sleep(time.Microsecond)
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for len(seen) < producers*perProducer {
		m.Drain()
		for {
			h := m.PopMessage()
			if h == nil {
				break
			}
			require.False(t, seen[h.Value])
			seen[h.Value] = true
			m.Free(h)
		}
	}
	require.Len(t, seen, producers*perProducer)
}
