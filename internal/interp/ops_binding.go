package interp

import (
	"fmt"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opDefine(in opcode.Instruction) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	v, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	old, defErr := m.Ctx.Define(name, v)
	if defErr != nil {
		return StepResult{}, defErr
	}
	m.Heap.Release(old)
	m.Heap.Retain(v)
	m.push(v)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opAssign(in opcode.Instruction) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	newVal, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	merged, old, assignErr := m.Ctx.Assign(name, newVal)
	if assignErr != nil {
		return m.raiseOrFail(assignErr)
	}
	m.Heap.Release(old)
	m.Heap.Retain(merged)
	m.push(merged)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opLoad(in opcode.Instruction, dynamic bool) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	v, ok := m.Ctx.Resolve(name, dynamic)
	if !ok {
		return m.raiseOrFail(fmt.Errorf("%w: %q", value.ErrMissingMember, name))
	}
	m.push(v)
	return StepResult{Status: Running}, nil
}
