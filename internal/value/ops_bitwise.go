package value

import "fmt"

// asInt widens a Bool to Int (false=0, true=1) for the mixed Int×Bool
// promotion spec §4.1 documents for bitwise/logical operators; Int
// values pass through unchanged.
func asInt(v *Object) (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func bothBool(a, b *Object) bool { return a.Kind == KindBool && b.Kind == KindBool }

// And implements `and`: logical on Bool×Bool, bitwise (with Int×Bool
// promotion) otherwise.
func And(a, b *Object) (*Object, error) {
	if bothBool(a, b) {
		return NewBool(a.Bool && b.Bool), nil
	}
	ai, ok1 := asInt(a)
	bi, ok2 := asInt(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: cannot and %s and %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	return NewInt(ai & bi), nil
}

func Or(a, b *Object) (*Object, error) {
	if bothBool(a, b) {
		return NewBool(a.Bool || b.Bool), nil
	}
	ai, ok1 := asInt(a)
	bi, ok2 := asInt(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: cannot or %s and %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	return NewInt(ai | bi), nil
}

func Xor(a, b *Object) (*Object, error) {
	if bothBool(a, b) {
		return NewBool(a.Bool != b.Bool), nil
	}
	ai, ok1 := asInt(a)
	bi, ok2 := asInt(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: cannot xor %s and %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	return NewInt(ai ^ bi), nil
}

func Not(a *Object) (*Object, error) {
	switch a.Kind {
	case KindBool:
		return NewBool(!a.Bool), nil
	case KindInt:
		return NewInt(^a.Int), nil
	default:
		return nil, fmt.Errorf("%w: cannot negate %s", ErrKindMismatch, a.Kind)
	}
}

func Shl(a, b *Object) (*Object, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return nil, fmt.Errorf("%w: shift requires Int operands, got %s and %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	return NewInt(a.Int << uint64(b.Int)), nil
}

func Shr(a, b *Object) (*Object, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return nil, fmt.Errorf("%w: shift requires Int operands, got %s and %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	return NewInt(a.Int >> uint64(b.Int)), nil
}
