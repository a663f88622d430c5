// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPSC is a ticket-based multi-producer single-consumer bounded queue.
//
// Producers take a ticket by fetch-and-add on tail. The ticket selects slot
// ticket mod n and is compared against that slot's sequence: the slot is
// writable when seq == ticket and readable when seq == ticket+1. After a read
// the consumer republishes seq = ticket+n for the next lap.
//
// Enqueue and Dequeue spin until their slot is ready. There is no full or
// empty signal on these paths: a producer that outpaces the consumer waits.
// TryEnqueue and TryDequeue are the non-blocking forms.
//
// The ring holds capacity+1 slots, all usable.
//
// Memory: capacity+1 slots (16+ bytes per slot, padded to a cache line)
type MPSC[T any] struct {
	_      pad
	head   atomix.Uint64 // Consumer ticket (single consumer writes)
	_      pad
	tail   atomix.Uint64 // Producer tickets (FAA)
	_      pad
	buffer []mpscSlot[T]
	size   uint64 // capacity + 1
}

type mpscSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewMPSC creates a new MPSC queue with capacity+1 slots.
// Panics if capacity < 1.
func NewMPSC[T any](capacity int) *MPSC[T] {
	if capacity < 1 {
		panic("lfds: capacity must be >= 1")
	}

	n := uint64(capacity) + 1
	q := &MPSC[T]{
		buffer: make([]mpscSlot[T], n),
		size:   n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue (multiple producers safe).
// Spins until the ticket's slot has been drained from the previous lap.
func (q *MPSC[T]) Enqueue(elem *T) {
	ticket := q.tail.AddAcqRel(1) - 1
	slot := &q.buffer[ticket%q.size]

	sw := spin.Wait{}
	for slot.seq.LoadAcquire() != ticket {
		sw.Once()
	}

	slot.data = *elem
	slot.seq.StoreRelease(ticket + 1)
}

// Dequeue removes and returns an element (single consumer only).
// Spins until the next slot has been written. If a producer has taken a
// ticket but not yet written, Dequeue waits for it.
func (q *MPSC[T]) Dequeue() T {
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head%q.size]

	sw := spin.Wait{}
	for slot.seq.LoadAcquire() != head+1 {
		sw.Once()
	}

	return q.consume(slot, head)
}

// TryEnqueue adds an element if the next ticket's slot is writable.
// Returns ErrWouldBlock if the queue is full or earlier tickets are still
// outstanding on that slot.
func (q *MPSC[T]) TryEnqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail%q.size]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// TryDequeue removes and returns an element (single consumer only).
// Returns (zero-value, ErrWouldBlock) if the next slot is not yet readable.
func (q *MPSC[T]) TryDequeue() (T, error) {
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head%q.size]

	if slot.seq.LoadAcquire() != head+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	return q.consume(slot, head), nil
}

func (q *MPSC[T]) consume(slot *mpscSlot[T], head uint64) T {
	elem := slot.data
	var zero T
	slot.data = zero
	slot.seq.StoreRelease(head + q.size)
	q.head.StoreRelease(head + 1)
	return elem
}

// Cap returns the number of elements the ring holds before producers wait.
func (q *MPSC[T]) Cap() int {
	return int(q.size)
}
