package interp

import (
	"fmt"

	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opTypeOf() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.pushNew(value.NewString(value.TypeOf(v)))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opReflectErr(fn func(*value.Object) (*value.Object, error)) (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	r, refErr := fn(v)
	if refErr != nil {
		return m.raiseOrFail(refErr)
	}
	m.push(r)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opLengthOf() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	n, lenErr := value.LengthOf(v)
	if lenErr != nil {
		return m.raiseOrFail(lenErr)
	}
	m.pushNew(value.NewInt(n))
	return StepResult{Status: Running}, nil
}

// opAssert implements `assert`: a failing assertion raises
// AssertionError rather than aborting the whole machine outright, so a
// boundary upstream still gets a chance to catch it like any other
// raised value.
func (m *Machine) opAssert() (StepResult, error) {
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if v.Kind != value.KindBool {
		return m.raiseOrFail(fmt.Errorf("%w: assert requires Bool, got %s", value.ErrKindMismatch, v.Kind))
	}
	if !v.Bool {
		return m.raiseRecord(m.Heap.Alloc(rterr.New(rterr.AssertionError, "assertion failed")))
	}
	return StepResult{Status: Running}, nil
}
