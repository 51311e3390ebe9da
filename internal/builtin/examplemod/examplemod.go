// Package examplemod is a fixture native module: two exported
// functions in the calling convention cmd/quill-ffi-gen discovers,
// used by its tests and as a worked example for anyone wiring a new
// native module's Go package into this ABI.
package examplemod

import (
	"fmt"

	"github.com/quillrt/quill/internal/value"
)

// Double returns its single Int or Float argument doubled.
func Double(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	if args == nil || args.Kind != value.KindTuple || len(args.Tuple) == 0 {
		return nil, fmt.Errorf("double: expected one argument")
	}
	arg := args.Tuple[0]
	switch arg.Kind {
	case value.KindInt:
		return value.NewInt(arg.Int * 2), nil
	case value.KindFloat:
		return value.NewFloat(arg.Float * 2), nil
	default:
		return nil, fmt.Errorf("double: expected Int or Float, got %s", arg.Kind)
	}
}

// Concat joins every String argument it is given.
func Concat(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	if args == nil || args.Kind != value.KindTuple {
		return value.NewString(""), nil
	}
	out := ""
	for _, a := range args.Tuple {
		if a.Kind != value.KindString {
			return nil, fmt.Errorf("concat: expected String arguments, got %s", a.Kind)
		}
		out += a.Str
	}
	return value.NewString(out), nil
}

// notExported is here to prove the generator skips unexported names.
func notExported(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	return nil, nil
}

// WrongShape has an exported name but the wrong signature, proving the
// generator filters on signature, not just exported-ness.
func WrongShape(args *value.Object) (*value.Object, error) {
	return args, nil
}
