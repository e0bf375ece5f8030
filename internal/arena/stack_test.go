package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_PushPopSingleThreaded(t *testing.T) {
	a := NewArena[int](4)
	var s Stack[int]
	require.True(t, s.Empty())

	h1 := a.Allocate()
	h1.Value = 1
	s.Push(h1)
	require.False(t, s.Empty())

	h2 := a.Allocate()
	h2.Value = 2
	s.Push(h2)

	got := s.Pop(a)
	require.Equal(t, 2, got.Value)
	got = s.Pop(a)
	require.Equal(t, 1, got.Value)
	require.Nil(t, s.Pop(a))
}

func TestStack_MoveToPreservesFIFOOrder(t *testing.T) {
	a := NewArena[int](8)
	var pending, queue Stack[int]

	for i := 0; i < 5; i++ {
		h := a.Allocate()
		h.Value = i
		pending.Push(h)
	}

	pending.MoveTo(a, &queue)
	require.True(t, pending.Empty())

	for i := 0; i < 5; i++ {
		h := queue.Pop(a)
		require.NotNil(t, h)
		require.Equal(t, i, h.Value)
	}
}

func TestArena_AllocateExhaustion(t *testing.T) {
	a := NewArena[int](2)
	require.NotNil(t, a.Allocate())
	require.NotNil(t, a.Allocate())
	require.Nil(t, a.Allocate())
}

// TestArena_GrowPreservesExistingPointers verifies that a *Holder[T]
// obtained before Grow remains valid — readable, writable, and still
// correctly addressable via at() through a Pointer captured beforehand —
// after Grow appends a new block.
func TestArena_GrowPreservesExistingPointers(t *testing.T) {
	a := NewArena[int](2)

	h1 := a.Allocate()
	require.NotNil(t, h1)
	h1.Value = 100

	h2 := a.Allocate()
	require.NotNil(t, h2)
	h2.Value = 200

	require.Nil(t, a.Allocate(), "arena should be exhausted before Grow")

	a.Grow(2)
	require.Equal(t, uint32(4), a.Capacity())

	// The pointers obtained before Grow must still read back the same
	// values; Grow must never have moved their backing storage.
	require.Equal(t, 100, h1.Value)
	require.Equal(t, 200, h2.Value)

	h3 := a.Allocate()
	require.NotNil(t, h3)
	h3.Value = 300
	h4 := a.Allocate()
	require.NotNil(t, h4)
	h4.Value = 400
	require.Nil(t, a.Allocate())

	require.Equal(t, 100, h1.Value)
	require.Equal(t, 200, h2.Value)
	require.Equal(t, 300, h3.Value)
	require.Equal(t, 400, h4.Value)
}

func TestArena_GrowIsVisibleToConcurrentAllocate(t *testing.T) {
	a := NewArena[int](4)
	for i := 0; i < 4; i++ {
		require.NotNil(t, a.Allocate())
	}

	var wg sync.WaitGroup
	results := make(chan *Holder[int], 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				h := a.Allocate()
				if h != nil {
					results <- h
					return
				}
			}
		}()
	}

	a.Grow(100)
	wg.Wait()
	close(results)

	seen := map[*Holder[int]]bool{}
	for h := range results {
		require.False(t, seen[h], "the same holder must not be allocated twice")
		seen[h] = true
	}
	require.Len(t, seen, 100)
}

// TestStack_ConcurrentProducersNoLossNoDuplication stresses the ABA guard:
// many goroutines push/pop/free cells through a shared arena concurrently,
// and every value handed out must be observed exactly once downstream.
func TestStack_ConcurrentProducersNoLossNoDuplication(t *testing.T) {
	const producers = 40
	const perProducer = 1000

	a := NewArena[int](producers * perProducer)
	var pending Stack[int]

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				h := a.Allocate()
				require.NotNil(t, h)
				h.Value = base + i
				pending.Push(h)
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	var queue Stack[int]
	pending.MoveTo(a, &queue)
	for {
		h := queue.Pop(a)
		if h == nil {
			break
		}
		require.False(t, seen[h.Value], "duplicate delivery of %d", h.Value)
		seen[h.Value] = true
	}
	require.Len(t, seen, producers*perProducer)
}
