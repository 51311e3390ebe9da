package interp

import (
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opGetMember(in opcode.Instruction) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	tuple, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	v, getErr := value.GetMember(tuple, name)
	if getErr != nil {
		return m.raiseOrFail(getErr)
	}
	m.push(v)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opSetMember(in opcode.Instruction) (StepResult, error) {
	name, err := nameConstAt(m.Code, in)
	if err != nil {
		return StepResult{}, err
	}
	newVal, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	tuple, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	old, setErr := value.SetMember(tuple, name, newVal)
	if setErr != nil {
		return m.raiseOrFail(setErr)
	}
	m.Heap.Release(old)
	m.Heap.Retain(newVal)
	m.push(newVal)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opGetIndex() (StepResult, error) {
	idx, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	target, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	v, getErr := value.Index(target, idx)
	if getErr != nil {
		return m.raiseOrFail(getErr)
	}
	m.pushNew(v)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opSetIndex() (StepResult, error) {
	newVal, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	idx, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	target, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	old, setErr := value.SetIndex(target, idx, newVal)
	if setErr != nil {
		return m.raiseOrFail(setErr)
	}
	m.Heap.Release(old)
	m.Heap.Retain(newVal)
	m.push(newVal)
	return StepResult{Status: Running}, nil
}
