package value

// Constructors build fresh, unreferenced Objects. They never touch
// Refs/Color/Online — ownership bookkeeping is the heap package's job,
// performed when a constructed Object is installed into a slot.

var nullSingleton = &Object{Kind: KindNull}

// Null returns the canonical null value. Null is immutable and has no
// owned references, so sharing a single instance is safe even though
// every other kind is a distinct allocation.
func Null() *Object { return nullSingleton }

func NewBool(b bool) *Object { return &Object{Kind: KindBool, Bool: b} }

func NewInt(i int64) *Object { return &Object{Kind: KindInt, Int: i} }

func NewFloat(f float64) *Object { return &Object{Kind: KindFloat, Float: f} }

func NewString(s string) *Object { return &Object{Kind: KindString, Str: s} }

func NewBytes(b []byte) *Object {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Object{Kind: KindBytes, Bytes: cp}
}

// NewRange constructs an inclusive-start, exclusive-end integer range.
func NewRange(lo, hi int64) *Object {
	return &Object{Kind: KindRange, RangeLo: lo, RangeHi: hi}
}

func NewKeyVal(k, v *Object) *Object {
	return &Object{Kind: KindKeyVal, KV: [2]*Object{k, v}}
}

// NewNamed constructs a Named(K,V) record. K is conventionally a
// KindString object; callers outside a constant argument-binding
// context are responsible for enforcing that where the spec requires it.
func NewNamed(k, v *Object) *Object {
	return &Object{Kind: KindNamed, KV: [2]*Object{k, v}}
}

func NewTuple(elems []*Object) *Object {
	cp := make([]*Object, len(elems))
	copy(cp, elems)
	return &Object{Kind: KindTuple, Tuple: cp}
}

func NewLazyFilter(container, predicate *Object) *Object {
	return &Object{Kind: KindLazyFilter, Filter: [2]*Object{container, predicate}}
}

func NewWrapper(inner *Object) *Object {
	return &Object{Kind: KindWrapper, Wrapped: inner}
}

func NewInstructions(d *InstructionsData) *Object {
	return &Object{Kind: KindInstructions, Instr: d}
}

func NewNativeModule(d *NativeModuleData) *Object {
	return &Object{Kind: KindNativeModule, Native: d}
}

func NewLambda(l *Lambda) *Object {
	if l.Result == nil {
		l.Result = Null()
	}
	return &Object{Kind: KindLambda, Lambda: l}
}
