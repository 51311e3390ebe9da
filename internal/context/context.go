package context

import (
	"fmt"

	"github.com/quillrt/quill/internal/value"
)

// Context is a single task's execution context: the frame stack and
// the operand stack it owns, per the "execution context" of a task.
type Context struct {
	Frames   []*Frame
	Operands []*value.Object
}

func New() *Context {
	return &Context{}
}

// PushOperand pushes v onto the operand stack.
func (c *Context) PushOperand(v *value.Object) {
	c.Operands = append(c.Operands, v)
}

// PopOperand pops and returns the top of the operand stack.
func (c *Context) PopOperand() (*value.Object, error) {
	if len(c.Operands) == 0 {
		return nil, fmt.Errorf("pop operand: operand stack is empty")
	}
	v := c.Operands[len(c.Operands)-1]
	c.Operands = c.Operands[:len(c.Operands)-1]
	return v, nil
}

// TopOperand returns the top of the operand stack without popping it.
func (c *Context) TopOperand() (*value.Object, error) {
	if len(c.Operands) == 0 {
		return nil, fmt.Errorf("top operand: operand stack is empty")
	}
	return c.Operands[len(c.Operands)-1], nil
}

// currentFuncDepth returns the FuncDepth a freshly pushed block or
// boundary frame should inherit: the current top frame's own
// FuncDepth, or 0 (meaning "this is the outermost function") if the
// context has no frames yet.
func (c *Context) currentFuncDepth() int {
	if len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[len(c.Frames)-1].FuncDepth
}

// PushFunctionFrame enters a call: lambda is the callee, assembled is
// the argument tuple BindArguments produced. It seeds the frame's
// self/this/arguments bindings per the binding semantics.
func (c *Context) PushFunctionFrame(lambda, assembled *value.Object, returnIP uint32, returnCode *value.Object) *Frame {
	f := newFrame(FunctionFrame, len(c.Frames), len(c.Operands))
	f.Lambda = lambda
	f.Args = assembled
	f.ReturnIP = returnIP
	f.ReturnCode = returnCode

	self := lambda.Lambda.Self
	if self == nil {
		self = value.Null()
	}
	f.Bindings["self"] = self
	f.Bindings["this"] = lambda
	f.Bindings["arguments"] = assembled

	c.Frames = append(c.Frames, f)
	return f
}

// PushBlockFrame enters a `{ ... }` scope with no catch semantics.
func (c *Context) PushBlockFrame() *Frame {
	f := newFrame(BlockFrame, c.currentFuncDepth(), len(c.Operands))
	c.Frames = append(c.Frames, f)
	return f
}

// PushBoundaryFrame enters a `boundary { ... }` scope: a block frame
// additionally marked as a raise catch point. resume is the absolute
// instruction pointer execution continues at if something raised
// inside this boundary is caught here (enter-boundary's operand,
// already resolved from a relative offset by the caller).
func (c *Context) PushBoundaryFrame(resume uint32) *Frame {
	f := newFrame(BoundaryFrame, c.currentFuncDepth(), len(c.Operands))
	f.Resume = resume
	c.Frames = append(c.Frames, f)
	return f
}

// PopFrame leaves the innermost frame without touching the operand
// stack — leave-frame and a non-raising leave-boundary both resolve to
// this: the last expression's value is already sitting on top of the
// operand stack where the caller expects it.
func (c *Context) PopFrame() (*Frame, error) {
	if len(c.Frames) == 0 {
		return nil, fmt.Errorf("pop frame: frame stack is empty")
	}
	f := c.Frames[len(c.Frames)-1]
	c.Frames = c.Frames[:len(c.Frames)-1]
	return f, nil
}

// PopFunctionFrame pops every frame up to and including the innermost
// function frame and truncates the operand stack back to that frame's
// entry height, for `return`. The caller pushes the return value.
func (c *Context) PopFunctionFrame() (*Frame, error) {
	for i := len(c.Frames) - 1; i >= 0; i-- {
		if c.Frames[i].Kind == FunctionFrame {
			fn := c.Frames[i]
			c.Frames = c.Frames[:i]
			c.Operands = c.Operands[:fn.StackBase]
			return fn, nil
		}
	}
	return nil, fmt.Errorf("return: no function frame on the context")
}

// Raise implements `raise v`: it unwinds frames up to and including
// the innermost boundary frame, truncates the operand stack to that
// boundary's entry height, and pushes v as the boundary's result. It
// returns the boundary's Resume instruction pointer, which the caller
// (internal/interp) must jump to instead of simply advancing past the
// raise opcode. It reports false if no boundary frame exists, in which
// case the caller aborts the task with v as its terminal error.
func (c *Context) Raise(v *value.Object) (resumeIP uint32, ok bool) {
	for i := len(c.Frames) - 1; i >= 0; i-- {
		if c.Frames[i].Kind == BoundaryFrame {
			boundary := c.Frames[i]
			c.Frames = c.Frames[:i]
			c.Operands = c.Operands[:boundary.StackBase]
			c.Operands = append(c.Operands, v)
			return boundary.Resume, true
		}
	}
	return 0, false
}
