// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"
)

// Reclaimer is a hazard-pointer deferred reclamation engine for objects of
// type T.
//
// Each participating goroutine registers once and receives a [Handle] that
// owns one hazard slot and one retirement list. Before dereferencing a
// shared object a reader announces it in its slot; a writer that unlinks an
// object retires it instead of releasing it. Once a handle's retirement list
// reaches the retired limit, the handle scans every hazard slot and passes
// each retired object that no slot references to the reclaim callback.
// Objects still announced somewhere stay in the list for the next scan.
//
// Unreclaimed objects are bounded by roughly maxThread × retiredLimit.
//
// Hazard pointers prevent an object from being reclaimed (and so reused)
// while a reader may still dereference it. They do not make a CAS on a
// recycled address safe by themselves; the data structure must only recycle
// through the reclaim callback, as [Stack] does.
//
// The hazard slot table and the retirement lists are allocated once at
// construction and never resized.
type Reclaimer[T any] struct {
	_       pad
	next    atomix.Uint64 // Registration counter
	_       pad
	records []hazardRecord
	limit   int
	reclaim func(*T)
}

// hazardRecord is the per-handle state. Only the owning handle writes it,
// except that every scanner reads hazard.
type hazardRecord struct {
	hazard     atomix.Uintptr // Announced address, 0 when clear
	retired    *queue.Queue   // Retired *T awaiting a scan, FIFO
	nRetired   atomix.Uint64
	nReclaimed atomix.Uint64
	_          cpu.CacheLinePad
}

// ReclaimerStats is a point-in-time snapshot of a Reclaimer's counters.
type ReclaimerStats struct {
	Registered int    // Handles handed out
	Retired    uint64 // Objects passed to Retire
	Reclaimed  uint64 // Objects passed to the reclaim callback
}

// Pending returns the number of retired objects not yet reclaimed.
func (s ReclaimerStats) Pending() uint64 {
	return s.Retired - s.Reclaimed
}

// NewReclaimer creates a reclaimer with maxThread hazard slots.
//
// A handle scans its retirement list once it holds retiredLimit objects.
// reclaim is called exactly once for every retired object, either from a
// scan that found it unannounced or from Close; it may be nil, in which
// case reclaimed objects are simply dropped.
//
// Panics if maxThread < 1 or retiredLimit < 1.
func NewReclaimer[T any](maxThread, retiredLimit int, reclaim func(*T)) *Reclaimer[T] {
	if maxThread < 1 {
		panic("lfds: maxThread must be >= 1")
	}
	if retiredLimit < 1 {
		panic("lfds: retiredLimit must be >= 1")
	}

	r := &Reclaimer[T]{
		records: make([]hazardRecord, maxThread),
		limit:   retiredLimit,
		reclaim: reclaim,
	}
	for i := range r.records {
		r.records[i].retired = queue.New()
	}
	return r
}

// Register assigns the calling goroutine a hazard slot.
//
// Slot indices come from a shared monotonic counter and are never returned,
// so at most maxThread handles are ever issued. Further calls fail with
// ErrThreadLimitExceeded.
//
// The returned handle must be used by one goroutine at a time.
func (r *Reclaimer[T]) Register() (*Handle[T], error) {
	idx := r.next.AddAcqRel(1) - 1
	if idx >= uint64(len(r.records)) {
		return nil, ErrThreadLimitExceeded
	}
	return &Handle[T]{r: r, rec: &r.records[idx], index: int(idx)}, nil
}

// MaxThread returns the number of hazard slots.
func (r *Reclaimer[T]) MaxThread() int {
	return len(r.records)
}

// Stats returns a snapshot of the reclaimer's counters. The snapshot is not
// atomic across handles.
func (r *Reclaimer[T]) Stats() ReclaimerStats {
	n := r.next.LoadAcquire()
	if n > uint64(len(r.records)) {
		n = uint64(len(r.records))
	}
	s := ReclaimerStats{Registered: int(n)}
	for i := range r.records {
		s.Retired += r.records[i].nRetired.LoadAcquire()
		s.Reclaimed += r.records[i].nReclaimed.LoadAcquire()
	}
	return s
}

// Close reclaims every object still waiting in any retirement list,
// regardless of hazard announcements, and clears all slots.
//
// The caller must ensure no other goroutine is still using the reclaimer
// or any of its handles.
func (r *Reclaimer[T]) Close() {
	for i := range r.records {
		rec := &r.records[i]
		for rec.retired.Length() > 0 {
			r.free(rec, rec.retired.Remove().(*T))
		}
		rec.hazard.StoreRelaxed(0)
	}
}

// hazardous reports whether any slot currently announces p.
func (r *Reclaimer[T]) hazardous(p *T) bool {
	addr := uintptr(unsafe.Pointer(p))
	for i := range r.records {
		if r.records[i].hazard.LoadAcquire() == addr {
			return true
		}
	}
	return false
}

func (r *Reclaimer[T]) free(rec *hazardRecord, p *T) {
	if r.reclaim != nil {
		r.reclaim(p)
	}
	rec.nReclaimed.StoreRelease(rec.nReclaimed.LoadRelaxed() + 1)
}

// Handle is a registered participant of a [Reclaimer]: one hazard slot and
// one retirement list.
//
// A Handle is not safe for concurrent use; each goroutine registers its own.
type Handle[T any] struct {
	r     *Reclaimer[T]
	rec   *hazardRecord
	index int
}

// Index returns the handle's slot index in [0, maxThread).
func (h *Handle[T]) Index() int {
	return h.index
}

// Announce publishes p in the handle's hazard slot.
//
// The store is sequentially consistent: a reload of the shared source after
// Announce must not be satisfied before the announcement is visible to
// scanners. Announcing nil clears the slot.
func (h *Handle[T]) Announce(p *T) {
	h.rec.hazard.Store(uintptr(unsafe.Pointer(p)))
}

// Clear resets the handle's hazard slot to empty.
func (h *Handle[T]) Clear() {
	h.rec.hazard.StoreRelease(0)
}

// Protect loads a shared pointer and announces it until the announcement is
// stable: load, announce, reload, and retry while the reload differs.
//
// On return the result is either nil (slot cleared) or announced and was
// still current after the announcement, so it cannot be reclaimed until the
// handle announces something else, clears, or retires.
func (h *Handle[T]) Protect(load func() *T) *T {
	sw := spin.Wait{}
	p := load()
	for p != nil {
		h.Announce(p)
		cur := load()
		if cur == p {
			return p
		}
		p = cur
		sw.Once()
	}
	h.Clear()
	return nil
}

// Retire hands p to the reclaimer once it is unreachable from the shared
// structure. It clears the handle's own slot first.
//
// When the retirement list reaches the retired limit, Retire scans it.
func (h *Handle[T]) Retire(p *T) {
	h.Clear()
	h.rec.retired.Add(p)
	h.rec.nRetired.StoreRelease(h.rec.nRetired.LoadRelaxed() + 1)
	if h.rec.retired.Length() >= h.r.limit {
		h.Scan()
	}
}

// Scan checks every object in the handle's retirement list against all
// hazard slots, reclaiming those no slot announces. The rest stay queued in
// their original order.
func (h *Handle[T]) Scan() {
	list := h.rec.retired
	for n := list.Length(); n > 0; n-- {
		p := list.Remove().(*T)
		if h.r.hazardous(p) {
			list.Add(p)
			continue
		}
		h.r.free(h.rec, p)
	}
}

// Pending returns the number of objects in the handle's retirement list.
func (h *Handle[T]) Pending() int {
	return h.rec.retired.Length()
}
