package value

import "fmt"

// TypeOf returns the human-readable kind name (the `typeof` opcode's
// result, wrapped as a String value by the caller).
func TypeOf(v *Object) string { return v.Kind.String() }

// AliasOf returns the value's alias list as a Tuple of String values.
func AliasOf(v *Object) *Object {
	elems := make([]*Object, len(v.aliases))
	for i, a := range v.aliases {
		elems[i] = NewString(a)
	}
	return NewTuple(elems)
}

// KeyOf implements `keyof` for KeyVal, Named, LazyFilter (predicate),
// and Lambda (parameter tuple).
func KeyOf(v *Object) (*Object, error) {
	switch v.Kind {
	case KindKeyVal, KindNamed:
		return v.KV[0], nil
	case KindLazyFilter:
		return v.Filter[1], nil
	case KindLambda:
		return v.Lambda.Params, nil
	default:
		return nil, fmt.Errorf("%w: keyof undefined for %s", ErrKindMismatch, v.Kind)
	}
}

// ValueOf implements `valueof` for KeyVal, Named, LazyFilter (source),
// and Lambda (cached result).
func ValueOf(v *Object) (*Object, error) {
	switch v.Kind {
	case KindKeyVal, KindNamed:
		return v.KV[1], nil
	case KindLazyFilter:
		return v.Filter[0], nil
	case KindLambda:
		return v.Lambda.Result, nil
	default:
		return nil, fmt.Errorf("%w: valueof undefined for %s", ErrKindMismatch, v.Kind)
	}
}

// CaptureOf implements `captureof`, defined only on Lambda.
func CaptureOf(v *Object) (*Object, error) {
	if v.Kind != KindLambda {
		return nil, fmt.Errorf("%w: captureof undefined for %s", ErrKindMismatch, v.Kind)
	}
	if v.Lambda.Capture == nil {
		return Null(), nil
	}
	return v.Lambda.Capture, nil
}

// LengthOf implements `lengthof`/`len`: Tuple element count, String
// rune count, Bytes byte count, Range span.
func LengthOf(v *Object) (int64, error) {
	switch v.Kind {
	case KindTuple:
		return int64(len(v.Tuple)), nil
	case KindString:
		return int64(len([]rune(v.Str))), nil
	case KindBytes:
		return int64(len(v.Bytes)), nil
	case KindRange:
		if v.RangeHi < v.RangeLo {
			return 0, nil
		}
		return v.RangeHi - v.RangeLo, nil
	default:
		return 0, fmt.Errorf("%w: lengthof undefined for %s", ErrKindMismatch, v.Kind)
	}
}
