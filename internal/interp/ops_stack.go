package interp

import (
	"fmt"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opDup() (StepResult, error) {
	v, err := m.Ctx.TopOperand()
	if err != nil {
		return StepResult{}, err
	}
	m.push(v)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opSwap() (StepResult, error) {
	b, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	a, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	m.push(b)
	m.push(a)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opPackN(in opcode.Instruction) (StepResult, error) {
	n := int(in.Operand)
	items := make([]*value.Object, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return StepResult{}, err
		}
		items[i] = v
	}
	m.pushNew(value.NewTuple(items))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opUnpack() (StepResult, error) {
	tuple, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if tuple.Kind != value.KindTuple {
		return m.raiseOrFail(fmt.Errorf("%w: unpack requires a Tuple, got %s", value.ErrKindMismatch, tuple.Kind))
	}
	for _, e := range tuple.Tuple {
		m.push(e)
	}
	return StepResult{Status: Running}, nil
}

func (m *Machine) opConst(in opcode.Instruction) (StepResult, error) {
	c, err := constAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	m.push(c)
	return StepResult{Status: Running}, nil
}
