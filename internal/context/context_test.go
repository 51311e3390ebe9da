package context

import (
	"testing"

	"github.com/quillrt/quill/internal/value"
)

func newLambda(static bool) *value.Object {
	return value.NewLambda(&value.Lambda{
		Params: value.NewTuple(nil),
		Static: static,
	})
}

func TestPushFunctionFrameSeedsSelfThisArguments(t *testing.T) {
	c := New()
	lambda := newLambda(true)
	lambda.Lambda.Self = value.NewString("bound-self")
	args := value.NewTuple(nil)

	f := c.PushFunctionFrame(lambda, args, 0, nil)

	if f.Bindings["self"] != lambda.Lambda.Self {
		t.Errorf("self binding = %v, want the lambda's bound self", f.Bindings["self"])
	}
	if f.Bindings["this"] != lambda {
		t.Errorf("this binding = %v, want the lambda itself", f.Bindings["this"])
	}
	if f.Bindings["arguments"] != args {
		t.Errorf("arguments binding = %v, want the assembled call tuple", f.Bindings["arguments"])
	}
}

func TestPushFunctionFrameDefaultsSelfToNull(t *testing.T) {
	c := New()
	lambda := newLambda(true)

	f := c.PushFunctionFrame(lambda, value.NewTuple(nil), 0, nil)

	if f.Bindings["self"].Kind != value.KindNull {
		t.Errorf("self binding = %v, want Null when the lambda has no bound self", f.Bindings["self"])
	}
}

func TestPopFrameLeavesOperandStackUntouched(t *testing.T) {
	c := New()
	c.PushOperand(value.NewInt(1))
	c.PushBlockFrame()
	c.PushOperand(value.NewInt(2))

	if _, err := c.PopFrame(); err != nil {
		t.Fatalf("PopFrame: unexpected error: %v", err)
	}
	if len(c.Operands) != 2 {
		t.Errorf("len(Operands) = %d, want 2 (leave-frame must not touch the operand stack)", len(c.Operands))
	}
}

func TestPopFunctionFrameTruncatesOperandStack(t *testing.T) {
	c := New()
	lambda := newLambda(true)
	c.PushOperand(value.NewInt(1)) // caller's stack below the call

	c.PushFunctionFrame(lambda, value.NewTuple(nil), 0, nil)
	c.PushOperand(value.NewInt(2)) // pushed inside the call

	fn, err := c.PopFunctionFrame()
	if err != nil {
		t.Fatalf("PopFunctionFrame: unexpected error: %v", err)
	}
	if fn.Lambda != lambda {
		t.Errorf("PopFunctionFrame returned frame for %v, want the pushed lambda", fn.Lambda)
	}
	if len(c.Operands) != 1 || c.Operands[0].Int != 1 {
		t.Errorf("Operands after return = %v, want [1] (truncated to the call's entry height)", c.Operands)
	}
}

func TestRaiseUnwindsToInnermostBoundaryAndPushesResult(t *testing.T) {
	c := New()
	lambda := newLambda(true)
	c.PushFunctionFrame(lambda, value.NewTuple(nil), 0, nil)
	c.PushBoundaryFrame(42)
	c.PushBlockFrame()
	c.PushBlockFrame()
	c.PushOperand(value.NewInt(9)) // side effect before the raise

	resumeIP, ok := c.Raise(value.NewInt(7))
	if !ok {
		t.Fatalf("Raise: no boundary found, want a catch")
	}
	if resumeIP != 42 {
		t.Errorf("Raise resumeIP = %d, want 42 (the boundary's Resume)", resumeIP)
	}
	if len(c.Frames) != 1 {
		t.Fatalf("len(Frames) after raise = %d, want 1 (function frame only)", len(c.Frames))
	}
	top, err := c.TopOperand()
	if err != nil {
		t.Fatalf("TopOperand: unexpected error: %v", err)
	}
	if top.Int != 7 {
		t.Errorf("raise result = %v, want 7", top)
	}
}

func TestRaiseWithNoBoundaryReportsFalse(t *testing.T) {
	c := New()
	lambda := newLambda(true)
	c.PushFunctionFrame(lambda, value.NewTuple(nil), 0, nil)

	if _, ok := c.Raise(value.NewInt(1)); ok {
		t.Errorf("Raise inside a task with no boundary: want false (task aborts), got true")
	}
}

func TestRaisePreservesMutationsMadeBeforeTheRaise(t *testing.T) {
	shared := value.NewTuple([]*value.Object{
		value.NewNamed(value.NewString("seen"), value.NewBool(false)),
	})

	c := New()
	lambda := newLambda(true)
	c.PushFunctionFrame(lambda, value.NewTuple(nil), 0, nil)
	c.PushBoundaryFrame(0)
	c.PushBlockFrame()
	if _, err := value.SetMember(shared, "seen", value.NewBool(true)); err != nil {
		t.Fatalf("SetMember: unexpected error: %v", err)
	}

	c.Raise(value.NewInt(7))

	v, err := value.GetMember(shared, "seen")
	if err != nil || !v.Bool {
		t.Errorf("mutation made before the raise did not persist past the unwind: %v, %v", v, err)
	}
}
