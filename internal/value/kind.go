package value

// Kind discriminates the heterogeneous value universe described in the
// data model: every heap object carries exactly one Kind plus the
// payload fields that apply to it.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindRange
	KindKeyVal
	KindNamed
	KindTuple
	KindLazyFilter
	KindWrapper
	KindInstructions
	KindNativeModule
	KindLambda
)

var kindNames = [...]string{
	KindNull:         "Null",
	KindBool:         "Bool",
	KindInt:          "Int",
	KindFloat:        "Float",
	KindString:       "String",
	KindBytes:        "Bytes",
	KindRange:        "Range",
	KindKeyVal:       "KeyVal",
	KindNamed:        "Named",
	KindTuple:        "Tuple",
	KindLazyFilter:   "LazyFilter",
	KindWrapper:      "Wrapper",
	KindInstructions: "Instructions",
	KindNativeModule: "NativeModule",
	KindLambda:       "Lambda",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
