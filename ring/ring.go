/*
NAME
  ring.go

DESCRIPTION
  ring.go provides a fixed-capacity circular buffer of owned values.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package ring provides a fixed-capacity circular buffer of owned values.
// Pushing onto a full buffer evicts and returns the oldest value, so the
// number of stored values never exceeds the capacity. Evicted and popped
// values are transferred to the caller; values still held are dropped on
// Clear and SetMaxSize.
package ring

// Buffer is a fixed-capacity circular buffer of values of type T.
// The zero capacity is permitted and means init is deferred to SetMaxSize.
type Buffer[T any] struct {
	count int
	first int
	last  int
	data  []T
}

// New returns a new Buffer with the given capacity.
func New[T any](capacity int) *Buffer[T] {
	b := &Buffer[T]{}
	if capacity > 0 {
		b.data = make([]T, capacity)
	}
	return b
}

// Push appends v at the tail of the buffer. If the buffer is full the head is
// first evicted and returned with true; otherwise the zero value and false
// are returned. Push on a zero-capacity buffer panics; SetMaxSize must be
// called first.
func (b *Buffer[T]) Push(v T) (T, bool) {
	var evicted T
	var ok bool
	if b.count == len(b.data) {
		evicted, ok = b.Pop()
	}
	if b.count == 0 {
		b.first = 0
		b.last = 0
	} else {
		b.last = (b.last + 1) % len(b.data)
	}
	b.data[b.last] = v
	b.count++
	return evicted, ok
}

// Pop removes and returns the head of the buffer, or the zero value and false
// when the buffer is empty.
func (b *Buffer[T]) Pop() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	v := b.data[b.first]
	b.data[b.first] = zero
	b.first = (b.first + 1) % len(b.data)
	b.count--
	return v, true
}

// First returns the head of the buffer without removing it.
func (b *Buffer[T]) First() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	return b.data[b.first], true
}

// Last returns the tail of the buffer without removing it.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	return b.data[b.last], true
}

// Index returns the element at logical index i. For i >= 0 the i-th element
// from the head is returned; for i < 0 the (-i)-th element from the tail, so
// -1 is the tail itself. The range check is against the current count, not
// the capacity; out of range returns the zero value and false.
func (b *Buffer[T]) Index(i int) (T, bool) {
	var zero T
	if b.count == 0 || i > b.count-1 || i < -b.count {
		return zero, false
	}
	var real int
	if i >= 0 {
		real = (b.first + i) % len(b.data)
	} else {
		real = (b.last + len(b.data) + 1 + i) % len(b.data)
	}
	return b.data[real], true
}

// Update replaces the element at logical index i with v, returning the prior
// value. Out of range returns the zero value and false and stores nothing.
func (b *Buffer[T]) Update(i int, v T) (T, bool) {
	var zero T
	if i < 0 || i >= b.count {
		return zero, false
	}
	real := (b.first + i) % len(b.data)
	prior := b.data[real]
	b.data[real] = v
	return prior, true
}

// Size returns the number of values stored in the buffer.
func (b *Buffer[T]) Size() int { return b.count }

// MaxSize returns the capacity of the buffer.
func (b *Buffer[T]) MaxSize() int { return len(b.data) }

// IsFull reports whether the number of stored values equals the capacity.
func (b *Buffer[T]) IsFull() bool { return b.count == len(b.data) }

// IsEmpty reports whether the buffer holds no values.
func (b *Buffer[T]) IsEmpty() bool { return b.count == 0 }

// Clear drops all values stored in the buffer.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.data {
		b.data[i] = zero
	}
	b.count = 0
	b.first = 0
	b.last = 0
}

// SetMaxSize drops all values and reallocates the buffer with the new
// capacity, resetting it to empty.
func (b *Buffer[T]) SetMaxSize(capacity int) {
	b.count = 0
	b.first = 0
	b.last = 0
	b.data = nil
	if capacity > 0 {
		b.data = make([]T, capacity)
	}
}
