package value

import "fmt"

// StrongAssign implements `=` for an already-bound slot: the slot's
// existing kind is authoritative. An Int value may widen into a Float
// slot; every other kind mismatch is rejected outright, including the
// narrowing direction (a Float value may not assign into an Int slot).
// This is the one place this package tightens the original language's
// bidirectional Int/Float coercion into a single allowed direction.
func StrongAssign(slot, val *Object) (*Object, error) {
	if slot.Kind == val.Kind {
		return val, nil
	}
	if slot.Kind == KindFloat && val.Kind == KindInt {
		return NewFloat(float64(val.Int)), nil
	}
	return nil, fmt.Errorf("%w: cannot assign %s into a %s slot", ErrIncompatibleAssign, val.Kind, slot.Kind)
}
