// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfds provides non-blocking concurrent data structures.
//
// The package offers three bounded ring-buffer queues, an unbounded
// lock-free stack, and the hazard-pointer reclaimer the stack is built on:
//
//   - SPSC: Single-Producer Single-Consumer ring (no CAS)
//   - MPSC: Multi-Producer Single-Consumer ring (FAA tickets)
//   - MPMC: Multi-Producer Multi-Consumer ring (FAA tickets on both sides)
//   - Stack: Treiber stack with hazard-pointer protected pop
//   - Reclaimer: generic hazard-pointer deferred reclamation
//
// # Quick Start
//
//	q := lfds.NewSPSC[Event](1024)
//	q := lfds.NewMPMC[*Request](4096)
//
// Builder API selects the ring from the declared constraints:
//
//	q := lfds.Build[Event](lfds.New(1024).SingleProducer().SingleConsumer()) // → SPSC
//	q := lfds.Build[Event](lfds.New(1024).SingleConsumer())                  // → MPSC
//	q := lfds.Build[Event](lfds.New(1024))                                   // → MPMC
//
// # Blocking and Non-blocking Forms
//
// SPSC never waits. Enqueue returns [ErrWouldBlock] when the ring is full and
// Dequeue returns it when the ring is empty:
//
//	v := 42
//	if err := q.Enqueue(&v); lfds.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
// MPSC and MPMC Enqueue and Dequeue take a ticket by fetch-and-add and spin
// on that ticket's slot until it is ready. They have no full or empty
// signal: a producer that outpaces its consumers spins rather than fails.
//
//	q := lfds.NewMPMC[Job](4096)
//	q.Enqueue(&job)   // spins while the ring is full
//	job := q.Dequeue() // spins while the ring is empty
//
// Callers that need bounded waiting use TryEnqueue and TryDequeue, which
// every ring provides (see [Queue]), with their own retry budget:
//
//	backoff := iox.Backoff{}
//	for q.TryEnqueue(&job) != nil {
//	    backoff.Wait()
//	}
//
// # Stack and Hazard Pointers
//
// Every goroutine that pops from a [Stack] registers first. Registration is
// fallible: a stack is created for a fixed number of goroutines.
//
//	s := lfds.NewStack[int](runtime.GOMAXPROCS(0))
//	h, err := s.Register()
//	if errors.Is(err, lfds.ErrThreadLimitExceeded) {
//	    // More goroutines than the stack was sized for
//	}
//	h.Push(&v)
//	v, err := h.Pop() // ErrWouldBlock when empty
//
// Pop announces the node it is about to read in its hazard slot, re-reads
// top to confirm the node is still current, and only then follows the link.
// Popped nodes are retired, not released: a node returns to the stack's node
// cache only after a scan finds it in no hazard slot.
//
// [Reclaimer] is usable on its own for any structure that unlinks shared
// objects:
//
//	r := lfds.NewReclaimer[Config](16, 32, func(c *Config) { pool.Put(c) })
//	h, _ := r.Register()
//	cfg := h.Protect(current.Load) // load, announce, reload
//	use(cfg)
//	h.Clear()
//
//	old := current.Swap(next)
//	h.Retire(old) // reclaimed once no hazard slot announces it
//
// # Capacity
//
// Rings allocate capacity+1 slots. SPSC keeps one slot empty to tell full
// from empty, so it holds exactly capacity elements. MPSC and MPMC use the
// sequence numbers instead, so all capacity+1 slots hold elements and Cap
// reports capacity+1.
//
// Minimum capacity is 1. Panic if capacity < 1.
//
// # Error Handling
//
// Control flow signals are sourced from [code.hybscloud.com/iox]:
//
//	lfds.IsWouldBlock(err)  // true if full/empty
//	lfds.IsSemantic(err)    // true if control flow signal
//	lfds.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// [ErrThreadLimitExceeded] is a real failure: the structure was sized for
// fewer goroutines than are using it.
//
// # Thread Safety
//
// All operations are safe within their access pattern constraints:
//
//   - SPSC: One producer goroutine, one consumer goroutine
//   - MPSC: Multiple producer goroutines, one consumer goroutine
//   - MPMC: Multiple producer and consumer goroutines
//   - Stack, Reclaimer: any goroutines, one Handle per goroutine
//
// Violating these constraints causes undefined behavior. Structures must not
// be closed or abandoned while other goroutines still operate on them.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships
// established through atomic memory orderings on separate variables. The
// rings protect non-atomic slot data with sequence numbers and the stack
// protects node contents with hazard announcements; the race detector may
// report false positives for both. Concurrent tests skip when [RaceEnabled]
// is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for spin-wait pause
// and yield, [code.hybscloud.com/iox] for semantic errors,
// [github.com/eapache/queue] for per-handle retirement lists, and
// [golang.org/x/sys/cpu] for cache line padding.
package lfds
