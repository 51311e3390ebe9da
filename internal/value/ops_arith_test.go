package value

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Add:
// ---------------------------------------------------------------------------

func TestAddIntInt(t *testing.T) {
	r, err := Add(NewInt(2), NewInt(3))
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if r.Kind != KindInt || r.Int != 5 {
		t.Errorf("Add(2, 3) = %v, want Int(5)", r)
	}
}

func TestAddIntFloatPromotes(t *testing.T) {
	r, err := Add(NewInt(2), NewFloat(0.5))
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if r.Kind != KindFloat || r.Float != 2.5 {
		t.Errorf("Add(2, 0.5) = %v, want Float(2.5)", r)
	}
}

func TestAddStringConcat(t *testing.T) {
	r, err := Add(NewString("foo"), NewString("bar"))
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if r.Str != "foobar" {
		t.Errorf("Add strings = %q, want %q", r.Str, "foobar")
	}
}

func TestAddBytesConcat(t *testing.T) {
	r, err := Add(NewBytes([]byte{1, 2}), NewBytes([]byte{3, 4}))
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if !bytesEqual(r.Bytes, []byte{1, 2, 3, 4}) {
		t.Errorf("Add bytes = %v, want [1 2 3 4]", r.Bytes)
	}
}

func TestAddTupleAppend(t *testing.T) {
	a := NewTuple([]*Object{NewInt(1)})
	b := NewTuple([]*Object{NewInt(2), NewInt(3)})
	r, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if len(r.Tuple) != 3 {
		t.Fatalf("Add tuples: len = %d, want 3", len(r.Tuple))
	}
}

func TestAddRangeInt(t *testing.T) {
	r, err := Add(NewRange(0, 5), NewInt(10))
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if r.RangeLo != 10 || r.RangeHi != 15 {
		t.Errorf("Add(0..5, 10) = [%d,%d), want [10,15)", r.RangeLo, r.RangeHi)
	}
}

func TestAddKindMismatch(t *testing.T) {
	_, err := Add(NewInt(1), NewString("x"))
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Add(Int, String) error = %v, want ErrKindMismatch", err)
	}
}

// ---------------------------------------------------------------------------
// Div / Mod:
// ---------------------------------------------------------------------------

func TestDivAlwaysFloat(t *testing.T) {
	r, err := Div(NewInt(4), NewInt(2))
	if err != nil {
		t.Fatalf("Div: unexpected error: %v", err)
	}
	if r.Kind != KindFloat || r.Float != 2.0 {
		t.Errorf("Div(4, 2) = %v, want Float(2.0)", r)
	}
}

func TestDivByZero(t *testing.T) {
	_, err := Div(NewInt(1), NewInt(0))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div by zero error = %v, want ErrDivisionByZero", err)
	}
}

func TestModIntStaysInt(t *testing.T) {
	r, err := Mod(NewInt(7), NewInt(3))
	if err != nil {
		t.Fatalf("Mod: unexpected error: %v", err)
	}
	if r.Kind != KindInt || r.Int != 1 {
		t.Errorf("Mod(7, 3) = %v, want Int(1)", r)
	}
}

func TestModByZero(t *testing.T) {
	_, err := Mod(NewInt(7), NewInt(0))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Mod by zero error = %v, want ErrDivisionByZero", err)
	}
}

// ---------------------------------------------------------------------------
// Pow / Neg:
// ---------------------------------------------------------------------------

func TestPowIntInt(t *testing.T) {
	r, err := Pow(NewInt(2), NewInt(10))
	if err != nil {
		t.Fatalf("Pow: unexpected error: %v", err)
	}
	if r.Kind != KindInt || r.Int != 1024 {
		t.Errorf("Pow(2, 10) = %v, want Int(1024)", r)
	}
}

func TestNegFloat(t *testing.T) {
	r, err := Neg(NewFloat(1.5))
	if err != nil {
		t.Fatalf("Neg: unexpected error: %v", err)
	}
	if r.Float != -1.5 {
		t.Errorf("Neg(1.5) = %v, want Float(-1.5)", r)
	}
}
