package value

import (
	"errors"
	"testing"
)

func TestTypeOf(t *testing.T) {
	if got := TypeOf(NewInt(1)); got != "Int" {
		t.Errorf("TypeOf(Int) = %q, want %q", got, "Int")
	}
}

func TestKeyOfValueOfKeyVal(t *testing.T) {
	kv := NewKeyVal(NewString("k"), NewInt(1))
	k, err := KeyOf(kv)
	if err != nil || k.Str != "k" {
		t.Errorf("KeyOf(kv) = %v, %v; want %q, nil", k, err, "k")
	}
	v, err := ValueOf(kv)
	if err != nil || v.Int != 1 {
		t.Errorf("ValueOf(kv) = %v, %v; want 1, nil", v, err)
	}
}

func TestKeyOfValueOfLambda(t *testing.T) {
	params := NewTuple(nil)
	l := NewLambda(&Lambda{Params: params, Result: NewInt(7)})
	k, err := KeyOf(l)
	if err != nil || k != params {
		t.Errorf("KeyOf(lambda) = %v, %v; want params tuple, nil", k, err)
	}
	v, err := ValueOf(l)
	if err != nil || v.Int != 7 {
		t.Errorf("ValueOf(lambda) = %v, %v; want 7, nil", v, err)
	}
}

func TestKeyOfUndefinedKind(t *testing.T) {
	_, err := KeyOf(NewInt(1))
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("KeyOf(Int) error = %v, want ErrKindMismatch", err)
	}
}

func TestCaptureOfDefaultsToNull(t *testing.T) {
	l := NewLambda(&Lambda{})
	c, err := CaptureOf(l)
	if err != nil {
		t.Fatalf("CaptureOf: unexpected error: %v", err)
	}
	if c.Kind != KindNull {
		t.Errorf("CaptureOf(lambda with no capture) = %v, want Null", c)
	}
}

func TestLengthOf(t *testing.T) {
	cases := []struct {
		name string
		v    *Object
		want int64
	}{
		{"tuple", NewTuple([]*Object{NewInt(1), NewInt(2)}), 2},
		{"string", NewString("hello"), 5},
		{"bytes", NewBytes([]byte{1, 2, 3}), 3},
		{"range", NewRange(2, 7), 5},
	}
	for _, c := range cases {
		got, err := LengthOf(c.v)
		if err != nil {
			t.Errorf("LengthOf(%s): unexpected error: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("LengthOf(%s) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestAliasOfReturnsTuple(t *testing.T) {
	v := AttachAlias("b", AttachAlias("a", NewInt(1)))
	names := AliasOf(v)
	if names.Kind != KindTuple || len(names.Tuple) != 2 {
		t.Fatalf("AliasOf = %v, want a 2-element Tuple", names)
	}
	if names.Tuple[0].Str != "b" || names.Tuple[1].Str != "a" {
		t.Errorf("AliasOf order = [%q %q], want [b a]", names.Tuple[0].Str, names.Tuple[1].Str)
	}
}
