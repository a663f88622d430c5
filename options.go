// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer/Consumer constraints (determines queue type)
	singleProducer bool
	singleConsumer bool

	// Requested capacity; rings allocate capacity+1 slots
	capacity int
}

// Builder creates queues with fluent configuration.
//
// The builder selects the ring from the declared producer/consumer
// constraints. There is no single-producer multi-consumer ring: a
// SingleProducer-only builder yields MPMC, which is safe for that pattern.
//
// Example:
//
//	// SPSC queue (optimal for single producer/consumer)
//	q := lfds.BuildSPSC[Event](lfds.New(1024).SingleProducer().SingleConsumer())
//
//	// MPSC queue for fan-in
//	q := lfds.BuildMPSC[Event](lfds.New(1024).SingleConsumer())
//
//	// MPMC queue (default, general purpose)
//	q := lfds.BuildMPMC[Request](lfds.New(4096))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Panics if capacity < 1.
//
// Example:
//
//	b := lfds.New(1024)
//	q := lfds.BuildSPSC[int](b.SingleProducer().SingleConsumer())
//
//	// Or chain directly
//	q := lfds.BuildMPMC[int](lfds.New(1024))
func New(capacity int) *Builder {
	if capacity < 1 {
		panic("lfds: capacity must be >= 1")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
// Enables SPSC or MPSC.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Algorithm selection:
//
//	SingleProducer + SingleConsumer → SPSC (Lamport ring buffer)
//	SingleConsumer only             → MPSC (FAA tickets, sequential consumer)
//	Otherwise                       → MPMC (FAA tickets on both sides)
//
// For type-safe returns with concrete types, use:
//   - BuildSPSC[T](b) → *SPSC[T]
//   - BuildMPSC[T](b) → *MPSC[T]
//   - BuildMPMC[T](b) → *MPMC[T]
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC[T](b.opts.capacity)
	case b.opts.singleConsumer:
		return NewMPSC[T](b.opts.capacity)
	default:
		return NewMPMC[T](b.opts.capacity)
	}
}

// BuildBlocking creates a BlockingQueue[T] whose Enqueue and Dequeue spin
// until they complete.
//
// SingleConsumer selects MPSC (a single producer is a valid MPSC producer);
// otherwise MPMC.
func BuildBlocking[T any](b *Builder) BlockingQueue[T] {
	if b.opts.singleConsumer {
		return NewMPSC[T](b.opts.capacity)
	}
	return NewMPMC[T](b.opts.capacity)
}

// BuildSPSC creates an SPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("lfds: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC[T](b.opts.capacity)
}

// BuildMPSC creates an MPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleConsumer() only.
func BuildMPSC[T any](b *Builder) *MPSC[T] {
	if b.opts.singleProducer || !b.opts.singleConsumer {
		panic("lfds: BuildMPSC requires SingleConsumer() without SingleProducer()")
	}
	return NewMPSC[T](b.opts.capacity)
}

// BuildMPMC creates an MPMC queue with compile-time type safety.
// Panics if builder has any constraints set.
func BuildMPMC[T any](b *Builder) *MPMC[T] {
	if b.opts.singleProducer || b.opts.singleConsumer {
		panic("lfds: BuildMPMC requires no constraints")
	}
	return NewMPMC[T](b.opts.capacity)
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
