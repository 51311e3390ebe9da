package value

import "fmt"

// GetMember implements `v.k`: a left-to-right scan of a tuple for a
// KeyVal/Named entry whose key equals k, per spec §4.1. It returns the
// live value slot — not a copy — so that a later SetMember on the same
// tuple is observable through any reference that still holds this
// result's container.
func GetMember(tuple *Object, key string) (*Object, error) {
	if tuple.Kind != KindTuple {
		return nil, fmt.Errorf("%w: member access requires a Tuple, got %s", ErrKindMismatch, tuple.Kind)
	}
	for _, e := range tuple.Tuple {
		if (e.Kind == KindKeyVal || e.Kind == KindNamed) && e.KV[0].Kind == KindString && e.KV[0].Str == key {
			return e.KV[1], nil
		}
	}
	return nil, fmt.Errorf("%w: no member %q", ErrMissingMember, key)
}

// SetMember mutates the matching entry's value slot in place — it and
// SetIndex are the operators in this package that mutate rather than
// return a fresh allocation, because spec §4.1 requires the write to be visible
// through every other reference to the same tuple. It returns the
// value that was previously in the slot so the caller (interp/heap) can
// release its ownership.
func SetMember(tuple *Object, key string, newVal *Object) (*Object, error) {
	if tuple.Kind != KindTuple {
		return nil, fmt.Errorf("%w: member assignment requires a Tuple, got %s", ErrKindMismatch, tuple.Kind)
	}
	for _, e := range tuple.Tuple {
		if (e.Kind == KindKeyVal || e.Kind == KindNamed) && e.KV[0].Kind == KindString && e.KV[0].Str == key {
			old := e.KV[1]
			e.KV[1] = newVal
			return old, nil
		}
	}
	return nil, fmt.Errorf("%w: no member %q", ErrMissingMember, key)
}
