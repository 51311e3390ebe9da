package heap

import "github.com/quillrt/quill/internal/value"

// collector runs the tracing mark-sweep leg of the hybrid strategy.
// It is iterative rather than recursive, per the corpus's own
// preference for an explicit worklist over stack recursion when
// walking a reference graph that may be deep or cyclic.
type collector struct {
	heap *Heap
}

// run colors every object reachable from roots (and from every
// currently-pinned native reference) black, then frees everything
// still white regardless of strong count. It returns the number of
// objects freed.
func (c *collector) run(roots []*value.Object) int {
	for o := range c.heap.live {
		o.Color = value.White
	}

	worklist := make([]*value.Object, 0, len(roots)+len(c.heap.pinned))
	worklist = append(worklist, roots...)
	for o := range c.heap.pinned {
		worklist = append(worklist, o)
	}

	for _, o := range worklist {
		grey(o)
	}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		o := worklist[n]
		worklist = worklist[:n]

		// !Online means the strong-count leg already freed o (a stale
		// edge from some still-live container that hasn't been visited
		// or rewritten since); resurrecting it here, or walking its
		// OwnedRefs, would trace a graph that no longer exists.
		if o == nil || o.Kind == value.KindNull || !o.Online || o.Color == value.Black {
			continue
		}
		o.Color = value.Black

		for _, ref := range o.OwnedRefs() {
			if ref != nil && ref.Online && ref.Color == value.White {
				grey(ref)
				worklist = append(worklist, ref)
			}
		}
		// Weak edges (WeakRefs, a lambda's `self`) are not greyed, so
		// they never keep anything alive on their own: a weak target
		// that has no other path to a root stays white and is freed
		// this cycle.
	}

	freed := 0
	for o := range c.heap.live {
		if o.Color == value.White {
			delete(c.heap.live, o)
			o.Online = false
			c.heap.stats.TotalFreed++
			freed++
		}
	}
	return freed
}

func grey(o *value.Object) {
	if o != nil && o.Kind != value.KindNull && o.Online && o.Color == value.White {
		o.Color = value.Grey
	}
}
