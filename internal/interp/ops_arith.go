package interp

import (
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opBinary(op opcode.Op) (StepResult, error) {
	b, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	a, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	var r *value.Object
	var opErr error
	switch op {
	case opcode.OpAdd:
		r, opErr = value.Add(a, b)
	case opcode.OpSub:
		r, opErr = value.Sub(a, b)
	case opcode.OpMul:
		r, opErr = value.Mul(a, b)
	case opcode.OpDiv:
		r, opErr = value.Div(a, b)
	case opcode.OpMod:
		r, opErr = value.Mod(a, b)
	case opcode.OpPow:
		r, opErr = value.Pow(a, b)
	}
	if opErr != nil {
		return m.raiseOrFail(opErr)
	}
	m.pushNew(r)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opUnary(fn func(*value.Object) (*value.Object, error)) (StepResult, error) {
	a, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	r, opErr := fn(a)
	if opErr != nil {
		return m.raiseOrFail(opErr)
	}
	m.pushNew(r)
	return StepResult{Status: Running}, nil
}

func (m *Machine) opCompare(op opcode.Op) (StepResult, error) {
	b, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	a, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if op == opcode.OpEq {
		m.pushNew(value.NewBool(value.Eq(a, b)))
		return StepResult{Status: Running}, nil
	}
	if op == opcode.OpNe {
		m.pushNew(value.NewBool(!value.Eq(a, b)))
		return StepResult{Status: Running}, nil
	}
	c, opErr := value.Cmp(a, b)
	if opErr != nil {
		return m.raiseOrFail(opErr)
	}
	var r bool
	switch op {
	case opcode.OpLt:
		r = c < 0
	case opcode.OpLe:
		r = c <= 0
	case opcode.OpGt:
		r = c > 0
	case opcode.OpGe:
		r = c >= 0
	}
	m.pushNew(value.NewBool(r))
	return StepResult{Status: Running}, nil
}

func (m *Machine) opBitwise(op opcode.Op) (StepResult, error) {
	b, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	a, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	var r *value.Object
	var opErr error
	switch op {
	case opcode.OpAnd:
		r, opErr = value.And(a, b)
	case opcode.OpOr:
		r, opErr = value.Or(a, b)
	case opcode.OpXor:
		r, opErr = value.Xor(a, b)
	case opcode.OpShl:
		r, opErr = value.Shl(a, b)
	case opcode.OpShr:
		r, opErr = value.Shr(a, b)
	}
	if opErr != nil {
		return m.raiseOrFail(opErr)
	}
	m.pushNew(r)
	return StepResult{Status: Running}, nil
}
