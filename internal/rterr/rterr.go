// Package rterr implements the error taxonomy: ordinary values tagged
// with the alias "Err" rather than a distinct error type, so that a
// raised error flows through exactly the same `raise`/boundary
// mechanism as any other value (spec §7).
package rterr

import (
	"errors"

	"github.com/quillrt/quill/internal/value"
)

// Kind names one of the taxonomy's error categories.
type Kind string

const (
	TypeError      Kind = "TypeError"
	LookupError    Kind = "LookupError"
	IndexError     Kind = "IndexError"
	ArgumentError  Kind = "ArgumentError"
	ArithmeticError Kind = "ArithmeticError"
	IOError        Kind = "IOError"
	ModuleError    Kind = "ModuleError"
	DeadlockError  Kind = "DeadlockError"
	AssertionError Kind = "AssertionError"
)

// New builds an Err-aliased record: a Tuple of two Named fields, "kind"
// and "message". Callers that need additional structured fields
// (e.g. the offending index) should append further Named entries
// before attaching the alias themselves; New covers the common case.
func New(kind Kind, message string) *value.Object {
	rec := value.NewTuple([]*value.Object{
		value.NewNamed(value.NewString("kind"), value.NewString(string(kind))),
		value.NewNamed(value.NewString("message"), value.NewString(message)),
	})
	return value.AttachAlias("Err", rec)
}

// ErrBadArgument is the sentinel a native built-in wraps its own error
// with to report a missing or ill-shaped argument, distinguishing that
// case from every other native failure (which callNative maps to
// IOError per spec §7: "raised by built-ins and native modules;
// surfaces identically").
var ErrBadArgument = errors.New("bad argument to native call")

// IsErr reports whether v carries the "Err" alias.
func IsErr(v *value.Object) bool {
	return v != nil && v.HasAlias("Err")
}

// KindOf extracts the "kind" field of an Err-aliased record.
func KindOf(v *value.Object) (Kind, bool) {
	if !IsErr(v) {
		return "", false
	}
	k, err := value.GetMember(v, "kind")
	if err != nil || k.Kind != value.KindString {
		return "", false
	}
	return Kind(k.Str), true
}

// Message extracts the "message" field of an Err-aliased record.
func Message(v *value.Object) (string, bool) {
	if !IsErr(v) {
		return "", false
	}
	m, err := value.GetMember(v, "message")
	if err != nil || m.Kind != value.KindString {
		return "", false
	}
	return m.Str, true
}

// FromOperatorError maps one of the value package's sentinel operator
// failures onto its taxonomy Kind, per spec §7's categorization of
// "kind mismatch in operator or assignment" (TypeError), "out-of-range
// index or slice" (IndexError), "missing member" (LookupError), and
// "division by zero, domain errors" (ArithmeticError). An invalid byte
// write maps to ArgumentError, and an err that wraps none of the value
// package's sentinels maps to TypeError.
func FromOperatorError(err error) *value.Object {
	switch {
	case errors.Is(err, value.ErrKindMismatch),
		errors.Is(err, value.ErrIncompatibleAssign),
		errors.Is(err, value.ErrNotOrderable),
		errors.Is(err, value.ErrNotIndexable):
		return New(TypeError, err.Error())
	case errors.Is(err, value.ErrIndexOutOfRange):
		return New(IndexError, err.Error())
	case errors.Is(err, value.ErrMissingMember):
		return New(LookupError, err.Error())
	case errors.Is(err, value.ErrDivisionByZero):
		return New(ArithmeticError, err.Error())
	case errors.Is(err, value.ErrInvalidByteWrite):
		return New(ArgumentError, err.Error())
	default:
		return New(TypeError, err.Error())
	}
}
