package value

import "github.com/quillrt/quill/internal/opcode"

// InstructionsData is the payload of a KindInstructions object: an
// immutable code image as described in spec §4.3/§6 — a decoded
// instruction stream, a constant pool, and a table of named entry
// points. Debug positions travel inline on each Instruction rather than
// in a separate table, since the binary reader merges the debug table
// into the decoded stream at load time (see internal/bytecode).
type InstructionsData struct {
	Code    []opcode.Instruction
	Consts  []*Object // constant pool entries; owned references
	Entries map[string]uint32
}

// EntryOffset resolves a named entry point (the implicit root entry is
// "__main__"); it reports false when the image has no such entry.
func (d *InstructionsData) EntryOffset(name string) (uint32, bool) {
	off, ok := d.Entries[name]
	return off, ok
}

// NativeContext is the opaque handle a native callable receives at call
// time. Its real type is defined by the builtin package (which plays
// the role of the native-module ABI's "heap handle" from spec §6); the
// value package only needs the name to avoid importing builtin and
// creating a cycle.
type NativeContext interface {
	// Pin prevents the heap from reclaiming obj for the duration of the
	// native call, per spec §5: "native calls that may retain references
	// must pin them... so the mark sees them as roots."
	Pin(obj *Object)
	Unpin(obj *Object)
}

// NativeCaller is implemented by a resolved native symbol. Its Call
// signature mirrors the ABI in spec §6: a generic reference in (the
// argument tuple), a heap handle (NativeContext), a generic reference
// out.
type NativeCaller interface {
	Call(ctx NativeContext, args *Object) (*Object, error)
}

// NativeModuleData is the payload of a KindNativeModule object: an
// opaque handle to a host-loaded native module plus the symbol
// resolution callback spec §6 calls module_entry's lookup_fn.
type NativeModuleData struct {
	Name   string
	Lookup func(symbol string) (NativeCaller, bool)
}

// Lambda is the central callable value. See spec §3 "Lambda" and §4.4
// for the binding semantics Static distinguishes.
type Lambda struct {
	Params *Object // owned tuple of Named; declaration-time defaults
	Result *Object // cached result of the most recent call/emit; starts Null

	Body  *Object // owned: either KindInstructions or KindNativeModule
	Entry uint32  // valid when Body.Kind == KindInstructions
	Sym   string  // valid when Body.Kind == KindNativeModule; callable_<Sym>

	Capture *Object // owned, usually a tuple of Named
	Self    *Object // weak, non-owning; see heap's traversal contract
	Static  bool    // true: clone params each call. false: mutate in place.
}

// IsNative reports whether the lambda's body is a native module rather
// than an Instructions code object.
func (l *Lambda) IsNative() bool {
	return l.Body != nil && l.Body.Kind == KindNativeModule
}
