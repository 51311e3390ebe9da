package value

import "fmt"

// Index implements `v[i]` for Tuple, String, Bytes and Range, per
// spec §4.1.
func Index(v, i *Object) (*Object, error) {
	switch v.Kind {
	case KindTuple:
		return indexTuple(v.Tuple, i, func(s []*Object) *Object { return NewTuple(s) })
	case KindString:
		runes := []rune(v.Str)
		switch i.Kind {
		case KindInt:
			idx, err := boundsCheck(i.Int, int64(len(runes)))
			if err != nil {
				return nil, err
			}
			return NewString(string(runes[idx])), nil
		case KindRange:
			lo, hi, err := rangeBounds(i, int64(len(runes)))
			if err != nil {
				return nil, err
			}
			return NewString(string(runes[lo:hi])), nil
		default:
			return nil, fmt.Errorf("%w: string index must be Int or Range, got %s", ErrKindMismatch, i.Kind)
		}
	case KindBytes:
		switch i.Kind {
		case KindInt:
			idx, err := boundsCheck(i.Int, int64(len(v.Bytes)))
			if err != nil {
				return nil, err
			}
			return NewInt(int64(v.Bytes[idx])), nil
		case KindRange:
			lo, hi, err := rangeBounds(i, int64(len(v.Bytes)))
			if err != nil {
				return nil, err
			}
			return &Object{Kind: KindBytes, Bytes: append([]byte(nil), v.Bytes[lo:hi]...)}, nil
		default:
			return nil, fmt.Errorf("%w: bytes index must be Int or Range, got %s", ErrKindMismatch, i.Kind)
		}
	case KindRange:
		if i.Kind != KindInt {
			return nil, fmt.Errorf("%w: range index must be Int, got %s", ErrKindMismatch, i.Kind)
		}
		val := v.RangeLo + i.Int
		if val < v.RangeLo || val >= v.RangeHi {
			return nil, fmt.Errorf("%w: %d not within [%d,%d)", ErrIndexOutOfRange, val, v.RangeLo, v.RangeHi)
		}
		return NewInt(val), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotIndexable, v.Kind)
	}
}

func indexTuple(elems []*Object, i *Object, mk func([]*Object) *Object) (*Object, error) {
	switch i.Kind {
	case KindInt:
		idx, err := boundsCheck(i.Int, int64(len(elems)))
		if err != nil {
			return nil, err
		}
		return elems[idx], nil
	case KindRange:
		lo, hi, err := rangeBounds(i, int64(len(elems)))
		if err != nil {
			return nil, err
		}
		return mk(elems[lo:hi]), nil
	default:
		return nil, fmt.Errorf("%w: tuple index must be Int or Range, got %s", ErrKindMismatch, i.Kind)
	}
}

func boundsCheck(idx, length int64) (int64, error) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("%w: index %d out of range for length %d", ErrIndexOutOfRange, idx, length)
	}
	return idx, nil
}

func rangeBounds(r *Object, length int64) (int64, int64, error) {
	lo, hi := r.RangeLo, r.RangeHi
	if lo < 0 || hi < lo || hi > length {
		return 0, 0, fmt.Errorf("%w: range [%d,%d) out of bounds for length %d", ErrIndexOutOfRange, lo, hi, length)
	}
	return lo, hi, nil
}

// SetIndex implements `v[i] = newVal` for a Tuple target: like
// SetMember, it mutates the element slot in place so the write is
// observable through any other reference to the same Tuple. Only an
// Int index is settable this way; a Range index has no single slot to
// mutate and is not supported (callers wanting a bulk byte-range write
// should route a Bytes target through AssignBytesSlice instead, per
// the whole-value-reassignment pattern scenario 6 exercises).
func SetIndex(target, i, newVal *Object) (*Object, error) {
	if target.Kind != KindTuple {
		return nil, fmt.Errorf("%w: index assignment requires a Tuple, got %s", ErrKindMismatch, target.Kind)
	}
	if i.Kind != KindInt {
		return nil, fmt.Errorf("%w: tuple index assignment requires an Int index, got %s", ErrKindMismatch, i.Kind)
	}
	idx, err := boundsCheck(i.Int, int64(len(target.Tuple)))
	if err != nil {
		return nil, err
	}
	old := target.Tuple[idx]
	target.Tuple[idx] = newVal
	return old, nil
}

// AssignBytesSlice performs the in-place slice write documented in spec
// §4.1 and exercised by scenario 6: target must be Bytes, kv must be a
// KeyVal whose key selects a {single index, range} and whose value is
// one of {Int byte value, String, Bytes}. It returns the replacement
// Bytes object; callers are responsible for installing it into the
// slot (it performs no mutation in place; in this package only
// SetMember and SetIndex mutate their target).
func AssignBytesSlice(target *Object, kv *Object) (*Object, error) {
	if target.Kind != KindBytes {
		return nil, fmt.Errorf("%w: slice-assignment target must be Bytes, got %s", ErrKindMismatch, target.Kind)
	}
	if kv.Kind != KindKeyVal {
		return nil, fmt.Errorf("%w: slice-assignment requires a KeyVal right-hand side, got %s", ErrKindMismatch, kv.Kind)
	}
	key, val := kv.KV[0], kv.KV[1]

	var lo, hi int64
	var err error
	switch key.Kind {
	case KindInt:
		lo, err = boundsCheck(key.Int, int64(len(target.Bytes)))
		if err != nil {
			return nil, err
		}
		hi = lo + 1
	case KindRange:
		lo, hi, err = rangeBounds(key, int64(len(target.Bytes)))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: slice-assignment key must be Int or Range, got %s", ErrKindMismatch, key.Kind)
	}

	var replacement []byte
	switch val.Kind {
	case KindInt:
		if val.Int < 0 || val.Int > 255 {
			return nil, fmt.Errorf("%w: byte value %d out of range 0-255", ErrInvalidByteWrite, val.Int)
		}
		replacement = make([]byte, hi-lo)
		for i := range replacement {
			replacement[i] = byte(val.Int)
		}
	case KindString:
		replacement = []byte(val.Str)
	case KindBytes:
		replacement = val.Bytes
	default:
		return nil, fmt.Errorf("%w: slice-assignment value must be Int, String, or Bytes, got %s", ErrInvalidByteWrite, val.Kind)
	}

	out := make([]byte, 0, int64(len(target.Bytes))-(hi-lo)+int64(len(replacement)))
	out = append(out, target.Bytes[:lo]...)
	out = append(out, replacement...)
	out = append(out, target.Bytes[hi:]...)
	return &Object{Kind: KindBytes, Bytes: out}, nil
}
