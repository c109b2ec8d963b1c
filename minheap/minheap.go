// Package minheap provides an indexed binary min-heap with decrease-key.
//
// Every item is held at most once. An auxiliary item->index table is kept in
// lock-step with the backing array so membership and priority lookups are
// O(1) and lowering a priority costs O(log n).
package minheap

import (
	"container/heap"
	"errors"
)

// ErrEmpty is returned by ExtractMin when the heap holds no items.
var ErrEmpty = errors.New("minheap: extract from empty heap")

type entry[T comparable] struct {
	item     T
	priority int
}

// entries implements heap.Interface and keeps index in sync on every move.
type entries[T comparable] struct {
	items    []entry[T]
	index    map[T]int
	tieBreak func(a, b T) bool
}

func (e *entries[T]) Len() int { return len(e.items) }

func (e *entries[T]) Less(i, j int) bool {
	if e.items[i].priority != e.items[j].priority {
		return e.items[i].priority < e.items[j].priority
	}
	if e.tieBreak != nil {
		return e.tieBreak(e.items[i].item, e.items[j].item)
	}
	return false
}

func (e *entries[T]) Swap(i, j int) {
	e.items[i], e.items[j] = e.items[j], e.items[i]
	e.index[e.items[i].item] = i
	e.index[e.items[j].item] = j
}

func (e *entries[T]) Push(x any) {
	en := x.(entry[T])
	e.index[en.item] = len(e.items)
	e.items = append(e.items, en)
}

func (e *entries[T]) Pop() any {
	old := e.items
	n := len(old)
	en := old[n-1]
	old[n-1] = entry[T]{}
	e.items = old[:n-1]
	delete(e.index, en.item)
	return en
}

// MinHeap is a priority queue over distinct items ranked by integer priority.
// The zero value is not usable; create one with New.
type MinHeap[T comparable] struct {
	e *entries[T]
}

// Option configures a MinHeap.
type Option[T comparable] func(*MinHeap[T])

// WithTieBreak orders items with equal priority by less. Without it,
// extraction order among equal priorities follows the heap's swap pattern.
func WithTieBreak[T comparable](less func(a, b T) bool) Option[T] {
	return func(h *MinHeap[T]) { h.e.tieBreak = less }
}

// New creates an empty heap.
func New[T comparable](opts ...Option[T]) *MinHeap[T] {
	h := &MinHeap[T]{e: &entries[T]{index: make(map[T]int)}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Len returns the number of items currently held.
func (h *MinHeap[T]) Len() int { return h.e.Len() }

// Contains reports whether item is in the heap.
func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.e.index[item]
	return ok
}

// Priority returns the stored priority of item.
func (h *MinHeap[T]) Priority(item T) (int, bool) {
	i, ok := h.e.index[item]
	if !ok {
		return 0, false
	}
	return h.e.items[i].priority, true
}

// Insert adds item with the given priority. If item is already present the
// call behaves like InsertOrUpdate and never creates a second entry.
func (h *MinHeap[T]) Insert(item T, priority int) {
	if h.Contains(item) {
		h.InsertOrUpdate(item, priority)
		return
	}
	heap.Push(h.e, entry[T]{item: item, priority: priority})
}

// InsertOrUpdate inserts item when absent. When present, the priority is
// only ever lowered: a strictly smaller priority replaces the stored one and
// the entry moves toward the root; equal or larger priorities are ignored.
func (h *MinHeap[T]) InsertOrUpdate(item T, priority int) {
	i, ok := h.e.index[item]
	if !ok {
		heap.Push(h.e, entry[T]{item: item, priority: priority})
		return
	}
	if priority >= h.e.items[i].priority {
		return
	}
	h.e.items[i].priority = priority
	heap.Fix(h.e, i)
}

// ExtractMin removes and returns the item with the smallest priority.
func (h *MinHeap[T]) ExtractMin() (T, error) {
	if h.e.Len() == 0 {
		var zero T
		return zero, ErrEmpty
	}
	en := heap.Pop(h.e).(entry[T])
	return en.item, nil
}
