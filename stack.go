// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// DefaultRetiredLimit is the retirement list length at which a stack handle
// scans for reclaimable nodes.
const DefaultRetiredLimit = 10

// Stack is an unbounded lock-free LIFO (Treiber stack) with hazard-pointer
// protected pop.
//
// Nodes move through Linked (reachable from top) → Detached (unlinked by the
// popping goroutine) → Retired (in the popper's retirement list) → Freed
// (returned to the stack's node cache for reuse by Push). A node re-enters
// the cache only after a scan finds it in no hazard slot, so a popper that
// announced a node can neither read recycled contents nor win a CAS against
// a recycled address.
//
// Len is an auxiliary counter updated outside the top CAS. It may disagree
// with the chain length while operations are in flight and converges once
// they settle.
//
// Example:
//
//	s := lfds.NewStack[int](8)
//	h, err := s.Register()
//	if err != nil {
//	    return err // more than 8 goroutines registered
//	}
//
//	v := 42
//	h.Push(&v)
//	elem, err := h.Pop()
//	if lfds.IsWouldBlock(err) {
//	    // Stack is empty
//	}
type Stack[T any] struct {
	_       pad
	top     atomic.Pointer[stackNode[T]]
	_       pad
	count   atomix.Int64 // Approximate live count
	_       pad
	hazards *Reclaimer[stackNode[T]]
	nodes   *MPMC[*stackNode[T]] // Reclaimed nodes awaiting reuse
}

type stackNode[T any] struct {
	value T
	next  *stackNode[T]
}

// NewStack creates an empty stack usable by up to maxThread registered
// goroutines. Panics if maxThread < 1.
func NewStack[T any](maxThread int) *Stack[T] {
	if maxThread < 1 {
		panic("lfds: maxThread must be >= 1")
	}

	s := &Stack[T]{
		nodes: NewMPMC[*stackNode[T]](maxThread * DefaultRetiredLimit),
	}
	s.hazards = NewReclaimer(maxThread, DefaultRetiredLimit, s.recycle)
	return s
}

// Register returns a handle for the calling goroutine.
// Fails with ErrThreadLimitExceeded once maxThread handles have been issued.
func (s *Stack[T]) Register() (*StackHandle[T], error) {
	hp, err := s.hazards.Register()
	if err != nil {
		return nil, err
	}
	return &StackHandle[T]{s: s, hp: hp, loadTop: s.top.Load}, nil
}

// Push adds an element on top of the stack.
// Push does not dereference shared nodes, so it needs no handle.
func (s *Stack[T]) Push(elem *T) {
	n := s.node()
	n.value = *elem

	sw := spin.Wait{}
	for {
		top := s.top.Load()
		n.next = top
		if s.top.CompareAndSwap(top, n) {
			break
		}
		sw.Once()
	}
	s.count.Add(1)
}

// Len returns the approximate number of elements on the stack.
func (s *Stack[T]) Len() int {
	if n := s.count.Load(); n > 0 {
		return int(n)
	}
	return 0
}

// Stats returns the counters of the stack's node reclaimer.
func (s *Stack[T]) Stats() ReclaimerStats {
	return s.hazards.Stats()
}

// Close reclaims every retired node. Nodes still linked stay on the stack.
//
// The caller must ensure no other goroutine is still using the stack.
func (s *Stack[T]) Close() {
	s.hazards.Close()
}

func (s *Stack[T]) node() *stackNode[T] {
	if n, err := s.nodes.TryDequeue(); err == nil {
		return n
	}
	return new(stackNode[T])
}

// recycle is the reclaim callback. A full cache drops the node to the GC.
func (s *Stack[T]) recycle(n *stackNode[T]) {
	n.next = nil
	_ = s.nodes.TryEnqueue(&n)
}

// StackHandle is a goroutine's registration with a [Stack].
//
// A StackHandle is not safe for concurrent use; each goroutine registers
// its own.
type StackHandle[T any] struct {
	s       *Stack[T]
	hp      *Handle[stackNode[T]]
	loadTop func() *stackNode[T]
}

// Push adds an element on top of the stack. Same as [Stack.Push].
func (h *StackHandle[T]) Push(elem *T) {
	h.s.Push(elem)
}

// Pop removes and returns the top element.
// Returns (zero-value, ErrWouldBlock) immediately if the stack is empty.
func (h *StackHandle[T]) Pop() (T, error) {
	s := h.s
	sw := spin.Wait{}
	for {
		top := h.hp.Protect(h.loadTop)
		if top == nil {
			var zero T
			return zero, ErrWouldBlock
		}

		if s.top.CompareAndSwap(top, top.next) {
			s.count.Add(-1)
			elem := top.value
			var zero T
			top.value = zero
			h.hp.Retire(top)
			return elem, nil
		}
		sw.Once()
	}
}

// Index returns the handle's hazard slot index.
func (h *StackHandle[T]) Index() int {
	return h.hp.Index()
}
