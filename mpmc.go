// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMC is a ticket-based multi-producer multi-consumer bounded queue.
//
// Both sides take tickets by fetch-and-add: producers on tail, consumers on
// head. Each side then spins on its ticket's slot sequence (seq == ticket to
// write, seq == ticket+1 to read), exactly as in [MPSC]. A consumer
// republishes seq = ticket+n after reading so the slot is ready for the
// producer one lap later.
//
// Enqueue and Dequeue are spin-until-ready operations, not fallible ones.
// TryEnqueue and TryDequeue are CAS-based non-blocking forms using per-slot
// sequence validation; they share the ticket counters with the FAA forms,
// so every ticket is still claimed exactly once.
//
// The ring holds capacity+1 slots, all usable.
//
// Memory: capacity+1 slots (16+ bytes per slot, padded to a cache line)
type MPMC[T any] struct {
	_      pad
	tail   atomix.Uint64 // Producer tickets
	_      pad
	head   atomix.Uint64 // Consumer tickets
	_      pad
	buffer []mpmcSlot[T]
	size   uint64 // capacity + 1
}

type mpmcSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewMPMC creates a new MPMC queue with capacity+1 slots.
// Panics if capacity < 1.
func NewMPMC[T any](capacity int) *MPMC[T] {
	if capacity < 1 {
		panic("lfds: capacity must be >= 1")
	}

	n := uint64(capacity) + 1
	q := &MPMC[T]{
		buffer: make([]mpmcSlot[T], n),
		size:   n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue, spinning until its slot is writable.
func (q *MPMC[T]) Enqueue(elem *T) {
	ticket := q.tail.AddAcqRel(1) - 1
	slot := &q.buffer[ticket%q.size]

	sw := spin.Wait{}
	for slot.seq.LoadAcquire() != ticket {
		sw.Once()
	}

	slot.data = *elem
	slot.seq.StoreRelease(ticket + 1)
}

// Dequeue removes and returns an element, spinning until its slot is
// readable. A consumer that takes a ticket ahead of every producer waits
// until some producer reaches that ticket.
func (q *MPMC[T]) Dequeue() T {
	ticket := q.head.AddAcqRel(1) - 1
	slot := &q.buffer[ticket%q.size]

	sw := spin.Wait{}
	for slot.seq.LoadAcquire() != ticket+1 {
		sw.Once()
	}

	elem := slot.data
	var zero T
	slot.data = zero
	slot.seq.StoreRelease(ticket + q.size)
	return elem
}

// TryEnqueue adds an element if the next ticket's slot is writable.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMC[T]) TryEnqueue(elem *T) error {
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

// TryDequeue removes and returns an element if the next ticket's slot is
// readable. Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMC[T]) TryDequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head%q.size]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.size)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the number of elements the ring holds before producers wait.
func (q *MPMC[T]) Cap() int {
	return int(q.size)
}
