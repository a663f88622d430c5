// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import "code.hybscloud.com/atomix"

// SPSC is a single-producer single-consumer bounded queue.
//
// Based on Lamport's ring buffer with cached index optimization. The ring
// holds capacity+1 slots so that head == tail means empty and
// tail+1 == head (mod slots) means full, without a separate counter.
//
// Only the producer writes tail and only the consumer writes head, so no
// CAS is needed. Each index store is a release and each cross-side load is
// an acquire: the index update is the edge that makes the slot contents
// visible to the other side.
//
// Memory: capacity+1 slots
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64 // Consumer reads from here
	_          pad
	cachedTail uint64 // Consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // Producer writes here
	_          pad
	cachedHead uint64 // Producer's cached view of head
	_          pad
	buffer     []spscSlot[T]
	size       uint64 // capacity + 1
}

type spscSlot[T any] struct {
	data T
	_    padShort
}

// NewSPSC creates a new SPSC queue holding up to capacity elements.
// Panics if capacity < 1.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 1 {
		panic("lfds: capacity must be >= 1")
	}

	n := uint64(capacity) + 1
	return &SPSC[T]{
		buffer: make([]spscSlot[T], n),
		size:   n,
	}
}

// Enqueue adds an element to the queue (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSC[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	next := tail + 1
	if next == q.size {
		next = 0
	}
	if next == q.cachedHead {
		q.cachedHead = q.head.LoadAcquire()
		if next == q.cachedHead {
			return ErrWouldBlock
		}
	}

	q.buffer[tail].data = *elem
	q.tail.StoreRelease(next)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	if head == q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head == q.cachedTail {
			var zero T
			return zero, ErrWouldBlock
		}
	}

	slot := &q.buffer[head]
	elem := slot.data
	var zero T
	slot.data = zero

	next := head + 1
	if next == q.size {
		next = 0
	}
	q.head.StoreRelease(next)
	return elem, nil
}

// TryEnqueue is Enqueue. SPSC never waits, so both forms are the same
// operation; TryEnqueue lets SPSC satisfy [Queue].
func (q *SPSC[T]) TryEnqueue(elem *T) error {
	return q.Enqueue(elem)
}

// TryDequeue is Dequeue, see TryEnqueue.
func (q *SPSC[T]) TryDequeue() (T, error) {
	return q.Dequeue()
}

// Cap returns the queue capacity.
func (q *SPSC[T]) Cap() int {
	return int(q.size - 1)
}
