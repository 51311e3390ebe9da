package value

// Copy makes a new owning allocation that shares (does not duplicate)
// v's composite children — the "explicit copy... request" of spec §3's
// ownership invariant. Copy v == v structurally, and Copy preserves
// alias list and Self unlike AttachAlias/WipeAlias.
func Copy(v *Object) *Object {
	return shallowCopy(v)
}

// DeepCopy recursively clones v and every owned child so that no
// mutation performed through the result is observable via v.
func DeepCopy(v *Object) *Object {
	return deepCopy(v, make(map[*Object]*Object))
}

func deepCopy(v *Object, seen map[*Object]*Object) *Object {
	if v == nil {
		return nil
	}
	if v.Kind == KindNull {
		return v // shared singleton, has no owned state to diverge
	}
	if c, ok := seen[v]; ok {
		return c // preserve internal sharing/cycles within one deepcopy
	}
	c := shallowCopy(v)
	seen[v] = c

	switch v.Kind {
	case KindKeyVal, KindNamed:
		c.KV = [2]*Object{deepCopy(v.KV[0], seen), deepCopy(v.KV[1], seen)}
	case KindTuple:
		c.Tuple = make([]*Object, len(v.Tuple))
		for i, e := range v.Tuple {
			c.Tuple[i] = deepCopy(e, seen)
		}
	case KindLazyFilter:
		c.Filter = [2]*Object{deepCopy(v.Filter[0], seen), deepCopy(v.Filter[1], seen)}
	case KindWrapper:
		c.Wrapped = deepCopy(v.Wrapped, seen)
	case KindLambda:
		l := *v.Lambda
		l.Params = deepCopy(v.Lambda.Params, seen)
		l.Result = deepCopy(v.Lambda.Result, seen)
		l.Capture = deepCopy(v.Lambda.Capture, seen)
		// Body (code/native module) is immutable and shared, not copied.
		// Self remains a weak alias to whatever the original pointed at.
		c.Lambda = &l
	}
	return c
}

// Equal implements the deep structural equality spec §4.1 defines for
// composites and exact comparison for scalars (including the
// fixed bit-pattern float comparison spec §9 calls for — == on Float is
// never "approximately equal").
func Equal(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		// The one cross-kind equality the spec allows implicitly through
		// numeric promotion rules is handled by callers of Eq (the `==`
		// operator), not here: structural Equal is kind-exact.
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindBytes:
		return bytesEqual(a.Bytes, b.Bytes)
	case KindRange:
		return a.RangeLo == b.RangeLo && a.RangeHi == b.RangeHi
	case KindKeyVal, KindNamed:
		return Equal(a.KV[0], b.KV[0]) && Equal(a.KV[1], b.KV[1])
	case KindTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for i := range a.Tuple {
			if !Equal(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}
		return true
	case KindLazyFilter:
		return Equal(a.Filter[0], b.Filter[0]) && Equal(a.Filter[1], b.Filter[1])
	case KindWrapper:
		return Equal(a.Wrapped, b.Wrapped)
	default:
		// Lambda, Instructions, NativeModule: reference identity only.
		return a == b
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
