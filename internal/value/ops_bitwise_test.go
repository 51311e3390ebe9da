package value

import "testing"

func TestAndBoolLogical(t *testing.T) {
	r, err := And(NewBool(true), NewBool(false))
	if err != nil {
		t.Fatalf("And: unexpected error: %v", err)
	}
	if r.Kind != KindBool || r.Bool != false {
		t.Errorf("And(true, false) = %v, want Bool(false)", r)
	}
}

func TestOrIntBitwise(t *testing.T) {
	r, err := Or(NewInt(0b1010), NewInt(0b0101))
	if err != nil {
		t.Fatalf("Or: unexpected error: %v", err)
	}
	if r.Int != 0b1111 {
		t.Errorf("Or(0b1010, 0b0101) = %d, want %d", r.Int, 0b1111)
	}
}

func TestXorBoolIntPromotion(t *testing.T) {
	r, err := Xor(NewBool(true), NewInt(0))
	if err != nil {
		t.Fatalf("Xor: unexpected error: %v", err)
	}
	if r.Kind != KindInt || r.Int != 1 {
		t.Errorf("Xor(true, 0) = %v, want Int(1)", r)
	}
}

func TestNotBool(t *testing.T) {
	r, _ := Not(NewBool(true))
	if r.Bool != false {
		t.Errorf("Not(true) = %v, want false", r.Bool)
	}
}

func TestNotInt(t *testing.T) {
	r, _ := Not(NewInt(0))
	if r.Int != -1 {
		t.Errorf("Not(0) = %d, want -1", r.Int)
	}
}

func TestShlShr(t *testing.T) {
	l, err := Shl(NewInt(1), NewInt(4))
	if err != nil {
		t.Fatalf("Shl: unexpected error: %v", err)
	}
	if l.Int != 16 {
		t.Errorf("Shl(1, 4) = %d, want 16", l.Int)
	}
	r, err := Shr(NewInt(16), NewInt(4))
	if err != nil {
		t.Fatalf("Shr: unexpected error: %v", err)
	}
	if r.Int != 1 {
		t.Errorf("Shr(16, 4) = %d, want 1", r.Int)
	}
}
