// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfds"
)

// =============================================================================
// MPSC - Basic Operations
// =============================================================================

// TestMPSCBasic tests that every one of the capacity+1 slots holds an element
// and the drain order is FIFO.
func TestMPSCBasic(t *testing.T) {
	q := lfds.NewMPSC[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		v := i + 1
		q.Enqueue(&v)
	}
	for i := range 4 {
		if got := q.Dequeue(); got != i+1 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, got, i+1)
		}
	}
}

// TestMPSCTryFullEmpty tests the non-blocking forms at both boundaries.
func TestMPSCTryFullEmpty(t *testing.T) {
	q := lfds.NewMPSC[int](3)

	if _, err := q.TryDequeue(); !lfds.IsWouldBlock(err) {
		t.Fatalf("TryDequeue on empty: got %v, want ErrWouldBlock", err)
	}

	for i := range q.Cap() {
		if err := q.TryEnqueue(&i); err != nil {
			t.Fatalf("TryEnqueue(%d): %v", i, err)
		}
	}
	v := 99
	if err := q.TryEnqueue(&v); !lfds.IsWouldBlock(err) {
		t.Fatalf("TryEnqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range q.Cap() {
		got, err := q.TryDequeue()
		if err != nil {
			t.Fatalf("TryDequeue(%d): %v", i, err)
		}
		if got != i {
			t.Fatalf("TryDequeue(%d): got %d, want %d", i, got, i)
		}
	}
	if _, err := q.TryDequeue(); !lfds.IsWouldBlock(err) {
		t.Fatalf("TryDequeue after drain: got %v, want ErrWouldBlock", err)
	}
}

// TestMPSCMixedForms interleaves blocking and non-blocking calls on the same
// counters over many laps of the ring.
func TestMPSCMixedForms(t *testing.T) {
	q := lfds.NewMPSC[int](2)

	for i := range 300 {
		if i%2 == 0 {
			q.Enqueue(&i)
		} else if err := q.TryEnqueue(&i); err != nil {
			t.Fatalf("TryEnqueue(%d): %v", i, err)
		}

		var got int
		if i%3 == 0 {
			got = q.Dequeue()
		} else {
			var err error
			if got, err = q.TryDequeue(); err != nil {
				t.Fatalf("TryDequeue(%d): %v", i, err)
			}
		}
		if got != i {
			t.Fatalf("round %d: got %d", i, got)
		}
	}
}

// TestMPSCPanicOnSmallCapacity tests that constructor panics for capacity < 1.
func TestMPSCPanicOnSmallCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for capacity 0")
		}
	}()
	lfds.NewMPSC[int](0)
}

// =============================================================================
// MPSC - Waiting Semantics
// =============================================================================

// TestMPSCDequeueWaitsForProducer tests that Dequeue on an empty ring waits
// for the next element instead of failing.
func TestMPSCDequeueWaitsForProducer(t *testing.T) {
	if lfds.RaceEnabled {
		t.Skip("skip: slot data is ordered by sequence numbers")
	}

	q := lfds.NewMPSC[int](4)
	done := make(chan int, 1)

	go func() {
		done <- q.Dequeue()
	}()

	select {
	case v := <-done:
		t.Fatalf("Dequeue returned %d on empty ring", v)
	case <-time.After(20 * time.Millisecond):
	}

	v := 7
	q.Enqueue(&v)

	select {
	case got := <-done:
		if got != 7 {
			t.Fatalf("Dequeue: got %d, want 7", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout: Dequeue did not observe Enqueue")
	}
}

// TestMPSCEnqueueWaitsWhenFull tests that Enqueue on a full ring waits for
// the consumer to free the slot it holds a ticket for.
func TestMPSCEnqueueWaitsWhenFull(t *testing.T) {
	if lfds.RaceEnabled {
		t.Skip("skip: slot data is ordered by sequence numbers")
	}

	q := lfds.NewMPSC[int](1)
	for i := range q.Cap() {
		q.Enqueue(&i)
	}

	var finished atomix.Bool
	done := make(chan struct{})
	go func() {
		v := 100
		q.Enqueue(&v)
		finished.Store(true)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if finished.Load() {
		t.Fatal("Enqueue completed on a full ring")
	}

	if got := q.Dequeue(); got != 0 {
		t.Fatalf("Dequeue: got %d, want 0", got)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout: Enqueue did not resume after Dequeue")
	}

	if got := q.Dequeue(); got != 1 {
		t.Fatalf("Dequeue: got %d, want 1", got)
	}
	if got := q.Dequeue(); got != 100 {
		t.Fatalf("Dequeue: got %d, want 100", got)
	}
}

// =============================================================================
// MPSC - Concurrent Tests (N Producers, 1 Consumer)
// =============================================================================

// TestMPSCConservation tests that P producers each enqueueing N distinct
// values deliver every value to the single consumer exactly once, and that
// each producer's values arrive in its own order.
func TestMPSCConservation(t *testing.T) {
	if lfds.RaceEnabled {
		t.Skip("skip: slot data is ordered by sequence numbers")
	}

	const (
		numProducers = 8
		itemsPerProd = 20000
		total        = numProducers * itemsPerProd
	)
	q := lfds.NewMPSC[int](64)

	var wg sync.WaitGroup
	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				q.Enqueue(&v)
			}
		}(p)
	}

	seen := make([]bool, total)
	lastSeq := make([]int, numProducers)
	for p := range lastSeq {
		lastSeq[p] = -1
	}
	var sum int64
	for range total {
		v := q.Dequeue()
		if v < 0 || v >= total {
			t.Fatalf("value out of range: %d", v)
		}
		if seen[v] {
			t.Fatalf("duplicate value: %d", v)
		}
		seen[v] = true
		sum += int64(v)

		id, seq := v/itemsPerProd, v%itemsPerProd
		if seq <= lastSeq[id] {
			t.Fatalf("producer %d: got seq %d after %d", id, seq, lastSeq[id])
		}
		lastSeq[id] = seq
	}
	wg.Wait()

	if want := int64(total) * (total - 1) / 2; sum != want {
		t.Fatalf("sum: got %d, want %d", sum, want)
	}
	if _, err := q.TryDequeue(); !lfds.IsWouldBlock(err) {
		t.Fatalf("TryDequeue after drain: got %v, want ErrWouldBlock", err)
	}
}

// TestMPSCTryConcurrent tests the non-blocking forms under producer
// contention with a backing-off consumer.
func TestMPSCTryConcurrent(t *testing.T) {
	if lfds.RaceEnabled {
		t.Skip("skip: slot data is ordered by sequence numbers")
	}

	const (
		numProducers = 4
		itemsPerProd = 10000
		total        = numProducers * itemsPerProd
		timeout      = 10 * time.Second
	)
	q := lfds.NewMPSC[int](16)
	deadline := time.Now().Add(timeout)

	var wg sync.WaitGroup
	var timedOut atomix.Bool
	var produced atomix.Int64
	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				for q.TryEnqueue(&v) != nil {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
				backoff.Reset()
				produced.Add(1)
			}
		}(p)
	}

	var sum int64
	backoff := iox.Backoff{}
	for got := 0; got < total; {
		v, err := q.TryDequeue()
		if err != nil {
			if timedOut.Load() || time.Now().After(deadline) {
				break
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		sum += int64(v)
		got++
	}
	wg.Wait()

	if timedOut.Load() {
		t.Fatalf("timeout: produced %d of %d", produced.Load(), total)
	}
	if want := int64(total) * (total - 1) / 2; sum != want {
		t.Fatalf("sum: got %d, want %d", sum, want)
	}
}
