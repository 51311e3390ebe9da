// Package heap implements the object allocator and the hybrid
// reclamation strategy described for the runtime's garbage collector:
// immediate strong-reference-count frees plus a periodic tracing
// mark-sweep that reclaims cycles the count alone cannot see. The heap
// knows how to walk an Object's reference graph (via the value
// package's traversal contract) but nothing about the interpreter loop
// that produces that graph.
package heap

import "github.com/quillrt/quill/internal/value"

// RootSource supplies the heap's mark phase with a snapshot of
// currently-live roots: the scheduler's per-task context chains and
// operand stacks, the built-in registry, and any natives' pinned
// objects. Implemented by internal/scheduler's rootWalker, kept here as an
// interface so this package never imports the scheduler or context
// packages.
type RootSource interface {
	Roots() []*value.Object
}

// Heap owns every allocation made during one program run and tracks
// strong-reference counts and GC bookkeeping for each.
type Heap struct {
	live    map[*value.Object]struct{}
	pinned  map[*value.Object]int // native-call pin depth, see Pin/Unpin
	gc      *collector
	stats   Stats
	liveCap int // threshold that triggers the next Collect, see ShouldCollect/nextThreshold
}

// New creates an empty heap. initialThreshold is the live-allocation
// count above which the first mark is scheduled; zero selects a
// conservative default.
func New(initialThreshold int) *Heap {
	if initialThreshold <= 0 {
		initialThreshold = defaultInitialThreshold
	}
	h := &Heap{
		live:    make(map[*value.Object]struct{}),
		pinned:  make(map[*value.Object]int),
		liveCap: initialThreshold,
	}
	h.gc = &collector{heap: h}
	return h
}

const defaultInitialThreshold = 4096

// Alloc registers a freshly-constructed Object with the heap. Every
// value package constructor result must pass through Alloc exactly
// once before any slot takes ownership of it, except the Null
// singleton, which this heap never tracks (it has no owned state and
// is never freed).
func (h *Heap) Alloc(o *value.Object) *value.Object {
	if o.Kind == value.KindNull {
		return o
	}
	o.Online = true
	o.Color = value.White
	h.live[o] = struct{}{}
	h.stats.TotalAllocated++
	return o
}

// Live reports the current number of tracked allocations.
func (h *Heap) Live() int { return len(h.live) }

// Retain increments o's strong reference count because some slot has
// just taken ownership of it.
func (h *Heap) Retain(o *value.Object) {
	if o == nil || o.Kind == value.KindNull {
		return
	}
	o.Refs++
}

// Release decrements o's strong reference count because a slot that
// owned it was overwritten, popped, or its container was freed. A
// count reaching zero frees o immediately and transitively releases
// every reference o owned, per the hybrid strategy's strong-count leg.
// Objects that can only be reached through a reference cycle never hit
// zero this way and are left for the next mark-sweep.
func (h *Heap) Release(o *value.Object) {
	if o == nil || o.Kind == value.KindNull {
		return
	}
	o.Refs--
	if o.Refs > 0 {
		return
	}
	h.free(o)
}

// free removes o from the live set and transitively releases every
// reference it owned. It does not touch weak references: those are
// never counted, so freeing o must not decrement anything reachable
// only via WeakRefs.
func (h *Heap) free(o *value.Object) {
	if _, ok := h.live[o]; !ok {
		return // already freed, e.g. reached twice via a shared child
	}
	delete(h.live, o)
	o.Online = false
	h.stats.TotalFreed++
	for _, child := range o.OwnedRefs() {
		h.Release(child)
	}
}

// Pin prevents o from being swept by the next mark even if no strong
// owner currently holds it, for the duration of an outstanding native
// call that retains a bare reference. Unpin must be called exactly
// once per Pin. Pin/Unpin satisfy value.NativeContext.
func (h *Heap) Pin(o *value.Object) {
	if o == nil || o.Kind == value.KindNull {
		return
	}
	h.pinned[o]++
}

func (h *Heap) Unpin(o *value.Object) {
	if o == nil || o.Kind == value.KindNull {
		return
	}
	h.pinned[o]--
	if h.pinned[o] <= 0 {
		delete(h.pinned, o)
	}
}

// Stats reports cumulative and most-recent-sweep allocator counters.
type Stats struct {
	TotalAllocated uint64
	TotalFreed     uint64
	Sweeps         uint64
	LastSweepFreed int
	LastLive       int
}

// StatsSnapshot returns a copy of the heap's current counters.
func (h *Heap) StatsSnapshot() Stats { return h.stats }

// ShouldCollect reports whether the live-allocation count has crossed
// the threshold the trigger policy uses to schedule a mark. Schedulers
// call this between task steps; it is never consulted mid-step.
func (h *Heap) ShouldCollect() bool {
	return len(h.live) > h.liveCap
}

// Collect runs one full mark-sweep cycle rooted at roots.Roots(). It
// must only be called from a safepoint: between task steps, or when
// every task is awaiting or done. See collector.go for the mark
// algorithm.
func (h *Heap) Collect(roots RootSource) Stats {
	freed := h.gc.run(roots.Roots())
	h.stats.Sweeps++
	h.stats.LastSweepFreed = freed
	h.stats.LastLive = len(h.live)
	h.liveCap = nextThreshold(h.stats.LastLive)
	return h.stats
}

// nextThreshold grows the collection threshold multiplicatively with
// the post-mark live count, per the trigger policy: a heap that
// settles at a larger working set collects less often, not more.
func nextThreshold(postMarkLive int) int {
	next := postMarkLive * 2
	if next < defaultInitialThreshold {
		next = defaultInitialThreshold
	}
	return next
}
