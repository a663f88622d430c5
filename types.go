// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

// Queue is the non-blocking view shared by every ring queue.
//
// TryEnqueue and TryDequeue never wait: they return ErrWouldBlock when the
// ring is full or empty. SPSC, MPSC and MPMC all implement Queue.
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
//
// Example:
//
//	q := lfds.Build[int](lfds.New(1024))
//
//	val := 42
//	if err := q.TryEnqueue(&val); err != nil {
//	    // Handle full queue
//	}
//
//	elem, err := q.TryDequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for non-blocking enqueue.
//
// The element is passed by pointer to avoid copying large structs. The queue
// stores a copy of the pointed-to value, so the original can be modified
// after TryEnqueue returns.
type Producer[T any] interface {
	// TryEnqueue adds an element if a slot is ready.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	//
	// Thread safety depends on queue type:
	//   - SPSC: single producer only
	//   - MPSC/MPMC: multiple producers safe
	TryEnqueue(elem *T) error
}

// Consumer is the interface for non-blocking dequeue.
//
// The element is returned by value. The slot is cleared to allow garbage
// collection of referenced objects.
type Consumer[T any] interface {
	// TryDequeue removes and returns an element if one is ready.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	//
	// Thread safety depends on queue type:
	//   - SPSC/MPSC: single consumer only
	//   - MPMC: multiple consumers safe
	TryDequeue() (T, error)
}

// BlockingQueue is a Queue whose Enqueue and Dequeue spin until they can
// complete.
//
// Enqueue and Dequeue take a ticket by fetch-and-add and then wait on the
// ticket's slot. They expose no full or empty signal: a producer that
// outpaces the consumers spins, it does not fail. MPSC and MPMC implement
// BlockingQueue.
type BlockingQueue[T any] interface {
	Queue[T]

	// Enqueue adds an element, spinning until its slot is writable.
	Enqueue(elem *T)

	// Dequeue removes an element, spinning until its slot is readable.
	Dequeue() T
}
