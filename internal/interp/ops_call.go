package interp

import (
	"errors"
	"fmt"

	"github.com/quillrt/quill/internal/context"
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opCall() (StepResult, error) {
	args, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	callee, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if callee.Kind != value.KindLambda {
		return m.raiseOrFail(fmt.Errorf("%w: call target must be a Lambda, got %s", value.ErrKindMismatch, callee.Kind))
	}

	if callee.Lambda.IsNative() {
		return m.callNative(callee, args)
	}

	assembled := context.BindArguments(callee, args)
	m.Ctx.PushFunctionFrame(callee, assembled, m.IP, m.CodeObj)
	m.setCode(callee.Lambda.Body)
	m.IP = callee.Lambda.Entry
	return StepResult{Status: Running}, nil
}

// callNative dispatches to a resolved host symbol per the FFI ABI: a
// generic reference in (the raw call-site tuple, unbound — parameter
// matching is a bytecode-lambda concept a native symbol has no
// declared parameter tuple to match against), a heap handle, a generic
// reference out.
func (m *Machine) callNative(callee, args *value.Object) (StepResult, error) {
	caller, found := callee.Lambda.Body.Native.Lookup(callee.Lambda.Sym)
	if !found {
		return m.raiseOrFail(fmt.Errorf("%w: native symbol %q", value.ErrMissingMember, callee.Lambda.Sym))
	}
	result, callErr := caller.Call(m.Heap, args)
	if callErr != nil {
		kind := rterr.IOError
		if errors.Is(callErr, rterr.ErrBadArgument) {
			kind = rterr.ArgumentError
		}
		return m.raiseRecord(m.Heap.Alloc(rterr.New(kind, callErr.Error())))
	}
	m.pushNew(result)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opJumpIfFalse(in opcode.Instruction) (StepResult, error) {
	cond, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if cond.Kind != value.KindBool {
		return m.raiseOrFail(fmt.Errorf("%w: jump_if_false requires Bool, got %s", value.ErrKindMismatch, cond.Kind))
	}
	if !cond.Bool {
		m.IP = uint32(int64(m.IP) - 4 + in.Operand)
	}
	return StepResult{Status: Running}, nil
}

func (m *Machine) opRaise() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	return m.raiseRecord(v)
}

func (m *Machine) opReturn() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	fn, popErr := m.Ctx.PopFunctionFrame()
	if popErr != nil {
		return StepResult{}, popErr
	}
	if fn.ReturnCode == nil {
		return StepResult{Status: Done, Value: v}, nil
	}
	m.setCode(fn.ReturnCode)
	m.IP = fn.ReturnIP
	m.push(v)
	return StepResult{Status: Running}, nil
}

// opEmit implements `emit v`: it sets the task's cached result and
// returns control to the instruction right after emit — emit alone is
// never a yield point.
func (m *Machine) opEmit() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	old := m.Task.Lambda.Result
	m.Task.Lambda.Result = v
	m.Heap.Release(old)
	m.Heap.Retain(v)
	return StepResult{Status: Running}, nil
}

// opCarrying implements break/continue: it leaves the innermost block
// frame (no different from leave-frame) and carries the value it was
// given back onto the operand stack, for the loop-result expression
// the compiler arranges on the far side of the jump it emits alongside
// this opcode.
func (m *Machine) opCarrying() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if _, popErr := m.Ctx.PopFrame(); popErr != nil {
		return StepResult{}, popErr
	}
	m.push(v)
	return StepResult{Status: Running}, nil
}

// opBindObject implements `bind_object`: self sits on top, the lambda
// to bind it into is the next slot down. The bind is a mutation of the
// lambda's own self field, not a clone — per spec §3, "self binding is
// whatever was stored in the lambda at bind time," a property of this
// particular lambda value.
func (m *Machine) opBindObject() (StepResult, error) {
	self, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	lambdaVal, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if lambdaVal.Kind != value.KindLambda {
		return m.raiseOrFail(fmt.Errorf("%w: bind_object target must be a Lambda, got %s", value.ErrKindMismatch, lambdaVal.Kind))
	}
	lambdaVal.Lambda.Self = self
	m.push(lambdaVal)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opAttachAlias(in opcode.Instruction) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(value.AttachAlias(name, v))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opUnaryValue(fn func(*value.Object) *value.Object) (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(fn(v))
	return StepResult{Status: Running}, nil
}

// opCollectFilter realizes a LazyFilter into a Tuple by synchronously
// calling its predicate once per source element. The predicate is
// assumed not to suspend: collect-filter is a single opcode with no
// yield point of its own, so a predicate that awaits inside it is
// rejected rather than silently blocking the whole step.
func (m *Machine) opCollectFilter() (StepResult, error) {
	filter, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if filter.Kind != value.KindLazyFilter {
		return m.raiseOrFail(fmt.Errorf("%w: collect_filter requires a LazyFilter, got %s", value.ErrKindMismatch, filter.Kind))
	}
	container, predicate := filter.Filter[0], filter.Filter[1]
	if container.Kind != value.KindTuple {
		return m.raiseOrFail(fmt.Errorf("%w: collect_filter source must be a Tuple, got %s", value.ErrKindMismatch, container.Kind))
	}

	kept := make([]*value.Object, 0, len(container.Tuple))
	for _, elem := range container.Tuple {
		res, callErr := m.callSync(predicate, value.NewTuple([]*value.Object{elem}))
		if callErr != nil {
			return m.raiseRecord(m.Heap.Alloc(rterr.New(rterr.ArgumentError, callErr.Error())))
		}
		if res.Kind == value.KindBool && res.Bool {
			kept = append(kept, elem)
		}
	}
	m.pushNew(value.NewTuple(kept))
	return StepResult{Status: Running}, nil
}

// callSync runs predicate(args) to completion in a fresh, host-less
// sub-machine sharing this one's heap, for collect-filter's internal
// use. A predicate that awaits has nothing to suspend into here and is
// reported as an error rather than hanging the caller's step.
func (m *Machine) callSync(predicate, args *value.Object) (*value.Object, error) {
	if predicate.Kind != value.KindLambda {
		return nil, fmt.Errorf("%w: predicate must be a Lambda, got %s", value.ErrKindMismatch, predicate.Kind)
	}
	if predicate.Lambda.IsNative() {
		caller, found := predicate.Lambda.Body.Native.Lookup(predicate.Lambda.Sym)
		if !found {
			return nil, fmt.Errorf("%w: native predicate symbol %q", value.ErrMissingMember, predicate.Lambda.Sym)
		}
		return caller.Call(m.Heap, args)
	}

	sub := &Machine{Heap: m.Heap, Ctx: context.New(), Task: predicate}
	sub.setCode(predicate.Lambda.Body)
	sub.IP = predicate.Lambda.Entry
	assembled := context.BindArguments(predicate, args)
	sub.Ctx.PushFunctionFrame(predicate, assembled, 0, nil)

	res := sub.StepUntilYieldOrDone()
	switch res.Status {
	case Done:
		return res.Value, nil
	case Yielded:
		return nil, fmt.Errorf("predicate suspended on await-task, which a synchronous filter cannot honor")
	default: // Failed
		msg, _ := rterr.Message(res.Value)
		return nil, fmt.Errorf("predicate raised: %s", msg)
	}
}
