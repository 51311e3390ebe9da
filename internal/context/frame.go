// Package context implements the execution context a task owns: an
// ordered stack of frames plus an operand stack, the scope-chain name
// resolution that walks them, the argument-binding algorithm run at
// call time, and the non-local unwind raise/boundary performs. It is
// the Go-idiomatic shape of the original interpreter's frame-tuple
// vector, restructured as a slice of Frame structs in the manner of an
// interpreter's call-frame array.
package context

import "github.com/quillrt/quill/internal/value"

// FrameKind distinguishes the three frame shapes a context stacks.
type FrameKind uint8

const (
	// FunctionFrame is entered on a call: it holds the callee, the
	// assembled argument tuple, and the return continuation.
	FunctionFrame FrameKind = iota
	// BlockFrame is entered on `{ ... }` or equivalent; leaving it
	// pops without affecting control flow.
	BlockFrame
	// BoundaryFrame is a BlockFrame additionally marked as a raise
	// catch point.
	BoundaryFrame
)

func (k FrameKind) String() string {
	switch k {
	case FunctionFrame:
		return "function"
	case BlockFrame:
		return "block"
	case BoundaryFrame:
		return "boundary"
	default:
		return "unknown"
	}
}

// Frame is one entry of the context's frame stack. Bindings holds the
// frame's own local binding table; every frame kind carries one, since
// a block frame can `:=` a name just as a function frame can.
type Frame struct {
	Kind     FrameKind
	Bindings map[string]*value.Object

	// FuncDepth is the index (in the owning Context.Frames slice) of
	// the nearest enclosing FunctionFrame — itself, if Kind is
	// FunctionFrame. Static name resolution stops walking outward once
	// it passes this index; it is how a block frame knows which
	// frames below it belong to "the same function."
	FuncDepth int

	// StackBase is the operand-stack height at the moment this frame
	// was pushed. A function return and a raise caught at a boundary
	// truncate the operand stack back to this height before pushing
	// their result; leave-boundary does not truncate.
	StackBase int

	// Resume is, for a BoundaryFrame only, the instruction pointer a
	// caught raise resumes execution at — the offset enter-boundary's
	// operand encodes, resolved to an absolute IP at push time.
	Resume uint32

	// Function frame fields; nil/zero for Block and Boundary frames.
	Lambda     *value.Object // callee, KindLambda
	Args       *value.Object // the assembled call tuple ("arguments")
	ReturnIP   uint32        // instruction pointer to resume in the caller
	ReturnCode *value.Object // caller's KindInstructions code object
}

func newFrame(kind FrameKind, funcDepth, stackBase int) *Frame {
	return &Frame{
		Kind:      kind,
		Bindings:  make(map[string]*value.Object),
		FuncDepth: funcDepth,
		StackBase: stackBase,
	}
}
