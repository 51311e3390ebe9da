package builtin

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/quillrt/quill/internal/value"
)

// sleepCall implements `sleep(seconds)`, spec §4.6's "a built-in may
// provide sleep" allowance. It blocks this call synchronously; a
// script gets concurrency out of it by wrapping the call in `async`,
// the same way any other built-in is spawned as its own task — sleep
// itself has no suspension point of its own to cooperate through.
func sleepCall(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	return pinned(ctx, args, func() (*value.Object, error) {
		arg, err := firstArg(args)
		if err != nil {
			return nil, err
		}
		var d time.Duration
		switch arg.Kind {
		case value.KindInt:
			d = time.Duration(arg.Int) * time.Second
		case value.KindFloat:
			d = time.Duration(arg.Float * float64(time.Second))
		default:
			return nil, argErrorf("sleep expects Int or Float seconds, got %s", arg.Kind)
		}
		if d > 0 {
			time.Sleep(d)
		}
		return value.Null(), nil
	})
}

// fetchCall implements a minimal async HTTP fetch built-in, spec
// §4.6's async-stdlib allowance applied to the original's
// async_request.rs. Like sleep, the blocking happens inside this one
// call; a script runs it concurrently with other tasks by spawning it.
//
// The response headers have no corresponding scalar Kind in the value
// model, so they travel as a CBOR-encoded map — the "structured
// (non-scalar) value descriptor" the native-module ABI hands back
// across Bytes when no primitive Kind fits.
func fetchCall(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	return pinned(ctx, args, func() (*value.Object, error) {
		arg, err := firstArg(args)
		if err != nil {
			return nil, err
		}
		if arg.Kind != value.KindString {
			return nil, argErrorf("fetch expects a String url, got %s", arg.Kind)
		}

		resp, err := http.Get(arg.Str)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", arg.Str, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: reading response body: %w", arg.Str, err)
		}

		headers := make(map[string]string, len(resp.Header))
		for k := range resp.Header {
			headers[k] = resp.Header.Get(k)
		}
		encodedHeaders, err := cbor.Marshal(headers)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: encoding response headers: %w", arg.Str, err)
		}

		rec := value.NewTuple([]*value.Object{
			value.NewNamed(value.NewString("status"), value.NewInt(int64(resp.StatusCode))),
			value.NewNamed(value.NewString("body"), value.NewBytes(body)),
			value.NewNamed(value.NewString("headers"), value.NewBytes(encodedHeaders)),
		})
		return value.AttachAlias("Response", rec), nil
	})
}
