package context

import (
	"fmt"

	"github.com/quillrt/quill/internal/value"
)

// Define implements `name := v`: define-or-overwrite in the current
// (innermost) frame only. old is the value the slot held before this
// define, or nil if the name was not already bound in this frame —
// returned so the caller (internal/interp) can release the heap's
// ownership of it, the same discipline Assign follows.
func (c *Context) Define(name string, v *value.Object) (old *value.Object, err error) {
	if len(c.Frames) == 0 {
		return nil, fmt.Errorf("define %q: no frame on the context", name)
	}
	frame := c.Frames[len(c.Frames)-1]
	old = frame.Bindings[name]
	frame.Bindings[name] = v
	return old, nil
}

// Resolve implements load-by-name (dynamic=false) and
// load-by-name-dynamic (dynamic=true).
//
// The static walk searches the current frame's bindings, then walks
// outward through enclosing block frames of the same function, then
// the function frame's own bindings (all covered by one loop bounded
// below by the owning function frame's index), then that function's
// capture value. A dynamic load that still fails continues outward
// into the caller chain: every frame below the function boundary,
// repeating the same local/capture check per function it crosses.
func (c *Context) Resolve(name string, dynamic bool) (*value.Object, bool) {
	if len(c.Frames) == 0 {
		return nil, false
	}
	funcDepth := c.Frames[len(c.Frames)-1].FuncDepth

	if v, ok := c.searchLocal(funcDepth, len(c.Frames)-1, name); ok {
		return v, true
	}
	if v, ok := c.searchCapture(c.Frames[funcDepth], name); ok {
		return v, true
	}
	if !dynamic {
		return nil, false
	}

	for funcDepth > 0 {
		callerTop := funcDepth - 1
		callerFuncDepth := c.Frames[callerTop].FuncDepth
		if v, ok := c.searchLocal(callerFuncDepth, callerTop, name); ok {
			return v, true
		}
		if v, ok := c.searchCapture(c.Frames[callerFuncDepth], name); ok {
			return v, true
		}
		funcDepth = callerFuncDepth
	}
	return nil, false
}

// searchLocal scans frames[from] down to frames[to] (inclusive,
// innermost first) — one function's local frame chain.
func (c *Context) searchLocal(from, to int, name string) (*value.Object, bool) {
	for i := to; i >= from; i-- {
		if v, ok := c.Frames[i].Bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (c *Context) searchCapture(fn *Frame, name string) (*value.Object, bool) {
	if fn.Lambda == nil || fn.Lambda.Lambda.Capture == nil {
		return nil, false
	}
	v, err := value.GetMember(fn.Lambda.Lambda.Capture, name)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Assign implements assign-existing (`=`): it walks the frame stack
// outward from the current frame (through captures of every function
// frame it crosses), unconditionally following the caller chain, and
// strong-assigns into the first matching slot it finds. It returns
// ErrMissingMember if no binding exists anywhere on the chain. old is
// the displaced value the slot held before the assignment, returned so
// the caller (internal/interp) can release the heap's ownership of it.
func (c *Context) Assign(name string, newVal *value.Object) (merged, old *value.Object, err error) {
	for i := len(c.Frames) - 1; i >= 0; i-- {
		if prev, ok := c.Frames[i].Bindings[name]; ok {
			merged, err = assignInto(prev, newVal)
			if err != nil {
				return nil, nil, err
			}
			c.Frames[i].Bindings[name] = merged
			return merged, prev, nil
		}
		if c.Frames[i].Kind == FunctionFrame {
			if v, prev, found, assignErr := c.assignCapture(c.Frames[i], name, newVal); found {
				return v, prev, assignErr
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: no binding %q", value.ErrMissingMember, name)
}

// assignCapture reports found=true once the name is located in fn's
// capture, whether or not the strong-assign that follows succeeds —
// a kind-mismatch failure here must surface as that error, not as a
// missing-binding fallthrough to the caller chain.
func (c *Context) assignCapture(fn *Frame, name string, newVal *value.Object) (v, old *value.Object, found bool, err error) {
	if fn.Lambda == nil || fn.Lambda.Lambda.Capture == nil {
		return nil, nil, false, nil
	}
	prev, getErr := value.GetMember(fn.Lambda.Lambda.Capture, name)
	if getErr != nil {
		return nil, nil, false, nil
	}
	merged, assignErr := assignInto(prev, newVal)
	if assignErr != nil {
		return nil, nil, true, assignErr
	}
	if _, setErr := value.SetMember(fn.Lambda.Lambda.Capture, name, merged); setErr != nil {
		return nil, nil, true, setErr
	}
	return merged, prev, true, nil
}

// assignInto implements assign-existing's one irregular case — `bytes
// = (range|index) : value` (scenario 6) — before falling back to
// ordinary strong-typed assignment. A KeyVal right-hand side landing
// on a Bytes slot is a slice write, not a kind-mismatch failure.
func assignInto(old, newVal *value.Object) (*value.Object, error) {
	if old.Kind == value.KindBytes && newVal.Kind == value.KindKeyVal {
		return value.AssignBytesSlice(old, newVal)
	}
	return value.StrongAssign(old, newVal)
}
