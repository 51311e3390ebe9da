package interp

import (
	"fmt"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

// opMakePair builds a KeyVal or Named record: the key is pushed first
// and the value second, so value sits on top.
func (m *Machine) opMakePair(mk func(k, v *value.Object) *value.Object) (StepResult, error) {
	val, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	key, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(mk(key, val))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opMakeRange() (StepResult, error) {
	hi, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	lo, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if lo.Kind != value.KindInt || hi.Kind != value.KindInt {
		return m.raiseOrFail(fmt.Errorf("%w: range bounds must be Int, got %s and %s", value.ErrKindMismatch, lo.Kind, hi.Kind))
	}
	m.pushNew(value.NewRange(lo.Int, hi.Int))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opMakeWrapper() (StepResult, error) {
	inner, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(value.NewWrapper(inner))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opMakeLazyFilter() (StepResult, error) {
	predicate, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	container, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(value.NewLazyFilter(container, predicate))
	return StepResult{Status: Running}, nil
}

// opMakeLambda builds a fresh Lambda closing over the current code
// object, per the operand convention: entry is the instruction offset
// this lambda's call resumes at, and the capture and parameter tuple
// are consumed off the stack (capture below, params on top). A Null
// capture means "no captured bindings." dynamic selects the binding
// variant (OpMakeLambda for static clone-and-bind, OpMakeLambdaDynamic
// for the in-place mutate variant), the same dynamic-flag-on-a-shared-
// handler shape opLoad uses for OpLoad/OpLoadDynamic.
func (m *Machine) opMakeLambda(in opcode.Instruction, dynamic bool) (StepResult, error) {
	params, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	capture, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	l := &value.Lambda{
		Params: params,
		Body:   m.CodeObj,
		Entry:  uint32(in.Operand),
		Static: !dynamic,
	}
	if capture.Kind != value.KindNull {
		l.Capture = capture
	}
	m.pushNew(value.NewLambda(l))
	return StepResult{Status: Running}, nil
}
