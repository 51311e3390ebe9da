package builtin

import (
	"fmt"

	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

// argErrorf builds an error wrapping rterr.ErrBadArgument, so
// internal/interp's callNative classifies it as ArgumentError rather
// than the default IOError.
func argErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", rterr.ErrBadArgument, fmt.Sprintf(format, a...))
}

// funcCaller adapts a plain Go function to value.NativeCaller, the way
// every built-in in stdlib.go is implemented.
type funcCaller func(ctx value.NativeContext, args *value.Object) (*value.Object, error)

func (f funcCaller) Call(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	return f(ctx, args)
}

// firstArg extracts args[0], reporting rterr.ErrBadArgument-wrapped
// failures for the shapes a native built-in cannot use: spec §7's
// ArgumentError is "missing required argument to a native built-in;
// unusable argument shape."
func firstArg(args *value.Object) (*value.Object, error) {
	if args == nil || args.Kind != value.KindTuple || len(args.Tuple) == 0 {
		return nil, argErrorf("expected at least one argument, got none")
	}
	return args.Tuple[0], nil
}

// pinned runs fn with args pinned against collection for the duration
// of the call, per spec §5: "native calls that may retain references
// must pin them... so the mark sees them as roots." Every built-in in
// this package goes through it even though none currently stashes args
// anywhere past its own return, so a future native module written
// against this same pattern inherits the pinning discipline for free.
func pinned(ctx value.NativeContext, args *value.Object, fn func() (*value.Object, error)) (*value.Object, error) {
	ctx.Pin(args)
	defer ctx.Unpin(args)
	return fn()
}
