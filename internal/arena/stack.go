// Package arena implements a bounded-capacity, ABA-safe intrusive stack
// whose capacity Arena.Grow can raise.
//
// It backs every lock-free queue in this module (the mailbox's pending
// list, its work queue, and its free pool all share one arena per type).
// Cells are addressed by index rather than pointer so that a 64-bit atomic
// can carry both the index and a per-cell generation counter, which is
// what makes compare-and-swap safe against a cell being popped, reused,
// and pushed again before a stale CAS lands (the ABA problem).
package arena

import (
	"sync"
	"sync/atomic"
)

// nullPointer is the sentinel value of a Pointer referring to no cell.
const nullPointer = 0

// Pointer packs an arena index and an operation counter into one word so
// it can be read and swapped atomically. The zero value means "no cell".
//
// Layout: bits [63:32] are the 1-based arena index (0 means null), bits
// [31:0] are the generation counter. The index is 1-based so the zero
// Pointer is unambiguously null without needing a separate validity bit.
type Pointer uint64

func makePointer(index uint32, generation uint32) Pointer {
	return Pointer(uint64(index)<<32 | uint64(generation))
}

func (p Pointer) index() uint32      { return uint32(p >> 32) }
func (p Pointer) generation() uint32 { return uint32(p) }

// IsNull reports whether p refers to no cell.
func (p Pointer) IsNull() bool { return p == nullPointer }

// Holder is a reusable arena cell: a value plus an intrusive next-link.
// A Holder belongs to at most one stack at a time; after Pop, the caller
// has exclusive access until it is Pushed onto some stack again.
type Holder[T any] struct {
	Value T

	self atomic.Uint64 // this cell's own Pointer, generation bumped on every push/pop
	next atomic.Uint64 // Pointer to the next cell in whichever stack holds this one
}

// Stack is a lock-free, intrusive singly-linked stack of Holder[T] cells
// drawn from a shared Arena[T], whose capacity bounds how many cells exist
// (Arena.Grow can raise it). Multiple Stacks may share
// one Arena (the mailbox does this for its pending/work-queue/free-pool
// triad), but a given Holder is only ever linked into one Stack at a time.
type Stack[T any] struct {
	head atomic.Uint64 // Pointer to the top of the stack
}

// Push makes h the new top of the stack. It is safe to call concurrently
// with any other Push or Pop on the same Stack, including from multiple
// producer goroutines.
func (s *Stack[T]) Push(h *Holder[T]) {
	self := Pointer(h.self.Load())
	// ABA guard: every push bumps this cell's generation, so a CAS that
	// raced with a pop-then-reuse-then-push of the same index will not
	// match a stale head value it captured earlier.
	self = makePointer(self.index(), self.generation()+1)
	h.self.Store(uint64(self))

	for {
		head := Pointer(s.head.Load())
		h.next.Store(uint64(head))
		if s.head.CompareAndSwap(uint64(head), uint64(self)) {
			return
		}
	}
}

// Pop removes and returns the top of the stack, or nil if it is empty.
func (s *Stack[T]) Pop(a *Arena[T]) *Holder[T] {
	for {
		head := Pointer(s.head.Load())
		if head.IsNull() {
			return nil
		}
		h := a.at(head.index())
		next := Pointer(h.next.Load())
		if s.head.CompareAndSwap(uint64(head), uint64(next)) {
			self := Pointer(h.self.Load())
			h.self.Store(uint64(makePointer(self.index(), self.generation()+1)))
			return h
		}
	}
}

// Empty reports whether the stack currently has no cells. It is a
// momentary snapshot under concurrent use.
func (s *Stack[T]) Empty() bool {
	return Pointer(s.head.Load()).IsNull()
}

// MoveTo atomically detaches the entire stack and reverses it onto dest,
// restoring producer (FIFO) order. After MoveTo, s is empty and the caller
// that performed the move has exclusive, single-threaded access to the
// detached chain until each cell is pushed or freed again.
func (s *Stack[T]) MoveTo(a *Arena[T], dest *Stack[T]) {
	head := Pointer(s.head.Swap(nullPointer))
	for !head.IsNull() {
		h := a.at(head.index())
		next := Pointer(h.next.Load())
		dest.Push(h)
		head = next
	}
}

// Arena is the growable backing storage shared by one or more Stacks. It
// never shrinks and never deallocates a cell once claimed; cells only
// move between the stacks that share this arena.
//
// Storage is a slice of never-reallocated inner block slices rather than
// one flat slice, so that Grow can add capacity without invalidating any
// *Holder[T] already handed out by at/Allocate — a plain append-and-grow
// on a single slice would risk a reallocation moving every existing cell
// out from under a pointer some Stack still holds.
type Arena[T any] struct {
	blocks    atomic.Pointer[[][]Holder[T]]
	capacity  atomic.Uint32
	allocated atomic.Uint32 // bump index into the logical cell space, 0-based
	growMu    sync.Mutex
}

// NewArena creates an Arena with room for exactly capacity cells.
func NewArena[T any](capacity uint32) *Arena[T] {
	a := &Arena[T]{}
	blocks := [][]Holder[T]{make([]Holder[T], capacity)}
	a.blocks.Store(&blocks)
	a.capacity.Store(capacity)
	return a
}

// Capacity returns the arena's current cell count, which only ever grows.
func (a *Arena[T]) Capacity() uint32 { return a.capacity.Load() }

// Allocated returns the number of cells ever claimed via Allocate.
func (a *Arena[T]) Allocated() uint32 { return a.allocated.Load() }

func (a *Arena[T]) at(index uint32) *Holder[T] {
	// index is 1-based; see Pointer's doc comment.
	idx := index - 1
	for _, block := range *a.blocks.Load() {
		if idx < uint32(len(block)) {
			return &block[idx]
		}
		idx -= uint32(len(block))
	}
	panic("arena: index out of range")
}

// Allocate claims a brand-new cell from the arena's unused region and
// returns it, or nil if the arena is exhausted. Callers should first try
// to Pop a cell off a free-pool Stack; Allocate is the fallback for
// growing allocated_count up to capacity (spec §4.1's allocate_holder).
func (a *Arena[T]) Allocate() *Holder[T] {
	for {
		cur := a.allocated.Load()
		if cur >= a.capacity.Load() {
			return nil
		}
		if a.allocated.CompareAndSwap(cur, cur+1) {
			h := a.at(cur + 1)
			h.self.Store(uint64(makePointer(cur+1, 0)))
			return h
		}
	}
}

// Grow adds by more cells to the arena's capacity by appending one new
// block, never touching (or moving) any existing block. Every *Holder[T]
// already returned by at/Allocate stays valid across a Grow. Capacity is
// only published (via the capacity field) after the new block is in
// place, so a racing Allocate never observes a capacity increase before
// the cells backing it exist.
func (a *Arena[T]) Grow(by uint32) {
	if by == 0 {
		return
	}
	a.growMu.Lock()
	defer a.growMu.Unlock()

	old := *a.blocks.Load()
	grown := make([][]Holder[T], len(old)+1)
	copy(grown, old)
	grown[len(old)] = make([]Holder[T], by)
	a.blocks.Store(&grown)
	a.capacity.Add(by)
}
