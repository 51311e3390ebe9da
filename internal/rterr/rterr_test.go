package rterr

import (
	"testing"

	"github.com/quillrt/quill/internal/value"
)

func TestNewCarriesErrAlias(t *testing.T) {
	e := New(TypeError, "bad kind")
	if !IsErr(e) {
		t.Fatalf("New(...) is not IsErr")
	}
	if !e.HasAlias("Err") {
		t.Errorf("New(...) aliases = %v, want [Err]", e.Aliases())
	}
}

func TestKindOfAndMessage(t *testing.T) {
	e := New(IndexError, "5 out of range")
	k, ok := KindOf(e)
	if !ok || k != IndexError {
		t.Errorf("KindOf = %v, %v; want IndexError, true", k, ok)
	}
	m, ok := Message(e)
	if !ok || m != "5 out of range" {
		t.Errorf("Message = %q, %v; want %q, true", m, ok, "5 out of range")
	}
}

func TestIsErrFalseForOrdinaryValue(t *testing.T) {
	if IsErr(value.NewInt(1)) {
		t.Errorf("IsErr(Int) = true, want false")
	}
}

func TestFromOperatorErrorMapsKindMismatchToTypeError(t *testing.T) {
	_, err := value.Add(value.NewInt(1), value.NewString("x"))
	e := FromOperatorError(err)
	k, _ := KindOf(e)
	if k != TypeError {
		t.Errorf("FromOperatorError(ErrKindMismatch) kind = %v, want TypeError", k)
	}
}

func TestFromOperatorErrorMapsDivisionByZeroToArithmeticError(t *testing.T) {
	_, err := value.Div(value.NewInt(1), value.NewInt(0))
	e := FromOperatorError(err)
	k, _ := KindOf(e)
	if k != ArithmeticError {
		t.Errorf("FromOperatorError(ErrDivisionByZero) kind = %v, want ArithmeticError", k)
	}
}

func TestFromOperatorErrorMapsMissingMemberToLookupError(t *testing.T) {
	_, err := value.GetMember(value.NewTuple(nil), "x")
	e := FromOperatorError(err)
	k, _ := KindOf(e)
	if k != LookupError {
		t.Errorf("FromOperatorError(ErrMissingMember) kind = %v, want LookupError", k)
	}
}
