package context

import (
	"testing"

	"github.com/quillrt/quill/internal/value"
)

func params(pairs ...any) *value.Object {
	entries := make([]*value.Object, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		entries = append(entries, value.NewNamed(value.NewString(pairs[i].(string)), value.NewInt(int64(pairs[i+1].(int)))))
	}
	return value.NewTuple(entries)
}

func mustMember(t *testing.T, tup *value.Object, key string) *value.Object {
	t.Helper()
	v, err := value.GetMember(tup, key)
	if err != nil {
		t.Fatalf("GetMember(%q): unexpected error: %v", key, err)
	}
	return v
}

// TestBindArgumentsMixedNamedAndPositional verifies spec scenario 5:
// declared (a => 0, b => 0), called f(b => 9, 7) yields a == 7, b == 9.
func TestBindArgumentsMixedNamedAndPositional(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: params("a", 0, "b", 0), Static: false})
	call := value.NewTuple([]*value.Object{
		value.NewNamed(value.NewString("b"), value.NewInt(9)),
		value.NewInt(7),
	})

	assembled := BindArguments(lambda, call)

	if v := mustMember(t, assembled, "a"); v.Int != 7 {
		t.Errorf("a = %v, want 7", v)
	}
	if v := mustMember(t, assembled, "b"); v.Int != 9 {
		t.Errorf("b = %v, want 9", v)
	}
}

// TestBindArgumentsDynamicCachesLastCall verifies spec scenario 1: a
// dynamic lambda's own Params tuple is mutated in place and reflects
// the most recent call.
func TestBindArgumentsDynamicCachesLastCall(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: params("x", 0), Static: false})

	BindArguments(lambda, value.NewTuple([]*value.Object{value.NewInt(5)}))

	if v := mustMember(t, lambda.Lambda.Params, "x"); v.Int != 5 {
		t.Errorf("lambda.Params.x after call = %v, want 5", v)
	}
}

func TestBindArgumentsStaticLeavesDeclarationUntouched(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: params("x", 0), Static: true})

	assembled := BindArguments(lambda, value.NewTuple([]*value.Object{value.NewInt(5)}))

	if v := mustMember(t, assembled, "x"); v.Int != 5 {
		t.Errorf("assembled.x = %v, want 5", v)
	}
	if v := mustMember(t, lambda.Lambda.Params, "x"); v.Int != 0 {
		t.Errorf("static lambda.Params.x after call = %v, want unchanged 0", v)
	}
}

func TestBindArgumentsAppendsUnmatchedNamedArgument(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: params("a", 0), Static: true})
	call := value.NewTuple([]*value.Object{
		value.NewNamed(value.NewString("extra"), value.NewInt(3)),
	})

	assembled := BindArguments(lambda, call)

	if v := mustMember(t, assembled, "extra"); v.Int != 3 {
		t.Errorf("extra = %v, want 3", v)
	}
}

func TestBindArgumentsAppendsOverflowPositionals(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: value.NewTuple(nil), Static: true})
	call := value.NewTuple([]*value.Object{value.NewInt(1), value.NewInt(2)})

	assembled := BindArguments(lambda, call)

	if len(assembled.Tuple) != 2 || assembled.Tuple[0].Int != 1 || assembled.Tuple[1].Int != 2 {
		t.Errorf("assembled = %v, want [1, 2] appended as overflow", assembled.Tuple)
	}
}

func TestBindArgumentsNoCallArgumentsKeepsDefaults(t *testing.T) {
	lambda := value.NewLambda(&value.Lambda{Params: params("a", 0), Static: true})

	assembled := BindArguments(lambda, value.NewTuple(nil))

	if v := mustMember(t, assembled, "a"); v.Int != 0 {
		t.Errorf("a with no call arguments = %v, want declaration default 0", v)
	}
}
