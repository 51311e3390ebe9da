package scheduler

import (
	"testing"

	"github.com/quillrt/quill/internal/context"
	"github.com/quillrt/quill/internal/heap"
	"github.com/quillrt/quill/internal/interp"
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

func instr(op opcode.Op, operand int64) opcode.Instruction {
	return opcode.Instruction{Op: op, Operand: operand}
}

func lambda(code []opcode.Instruction, consts []*value.Object) *value.Object {
	body := value.NewInstructions(&value.InstructionsData{Code: code, Consts: consts})
	return value.NewLambda(&value.Lambda{Body: body, Static: true})
}

func TestSpawnAwaitRoundTripThroughRealScheduler(t *testing.T) {
	child := lambda([]opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewInt(7)})

	root := lambda([]opcode.Instruction{
		instr(opcode.OpConst, 0), // push child as callee
		instr(opcode.OpPackN, 0), // empty args
		instr(opcode.OpSpawnTask, 0),
		instr(opcode.OpAwaitTask, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{child})

	s := New(heap.New(0), false)
	result, failed, err := s.Run(root, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failed {
		t.Fatalf("root failed unexpectedly: %v", result)
	}
	if result.Kind != value.KindInt || result.Int != 7 {
		t.Errorf("result = %v, want Int(7)", result)
	}
	if child.Lambda.Result.Kind != value.KindInt || child.Lambda.Result.Int != 7 {
		t.Errorf("child's own result slot = %v, want Int(7) (valueof semantics)", child.Lambda.Result)
	}
}

func TestAwaitingAnUnspawnedLambdaDeadlocks(t *testing.T) {
	neverSpawned := lambda(nil, nil)

	root := lambda([]opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpAwaitTask, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{neverSpawned})

	s := New(heap.New(0), false)
	result, failed, err := s.Run(root, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !failed {
		t.Fatalf("expected deadlock failure, got %v", result)
	}
	if kind, _ := rterr.KindOf(result); kind != rterr.DeadlockError {
		t.Errorf("kind = %v, want DeadlockError", kind)
	}
}

func TestSpawnedTaskDoesNotInheritCallerLexicalFrames(t *testing.T) {
	// child: load "x" (never defined in child's own fresh context) -> raises LookupError
	child := lambda([]opcode.Instruction{
		instr(opcode.OpLoad, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewString("x")})

	root := lambda([]opcode.Instruction{
		instr(opcode.OpConst, 0), // push Int(5)
		instr(opcode.OpDefine, 1),
		instr(opcode.OpPop, 0),
		instr(opcode.OpConst, 2), // push child as callee
		instr(opcode.OpPackN, 0),
		instr(opcode.OpSpawnTask, 0),
		instr(opcode.OpAwaitTask, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewInt(5), value.NewString("x"), child})

	s := New(heap.New(0), false)
	result, failed, err := s.Run(root, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !failed {
		t.Fatalf("expected the child's LookupError to propagate to the awaiting root, got %v", result)
	}
	if kind, _ := rterr.KindOf(result); kind != rterr.LookupError {
		t.Errorf("kind = %v, want LookupError (child must not see root's x binding)", kind)
	}
}

func TestSeedRootOnlyAffectsTheRootTaskNotSpawnedChildren(t *testing.T) {
	// child: load "greeting" -> never seeded into a spawned task's
	// context, so this must fail with LookupError even though the root
	// task's context does have it.
	child := lambda([]opcode.Instruction{
		instr(opcode.OpLoad, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewString("greeting")})

	root := lambda([]opcode.Instruction{
		instr(opcode.OpLoad, 0), // "greeting" — must resolve via SeedRoot
		instr(opcode.OpPop, 0),
		instr(opcode.OpConst, 1), // push child as callee
		instr(opcode.OpPackN, 0),
		instr(opcode.OpSpawnTask, 0),
		instr(opcode.OpAwaitTask, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewString("greeting"), child})

	s := New(heap.New(0), false)
	s.SeedRoot = func(ctx *context.Context) error {
		_, err := ctx.Define("greeting", value.NewString("hello"))
		return err
	}
	result, failed, err := s.Run(root, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !failed {
		t.Fatalf("expected the child's LookupError to propagate, got %v", result)
	}
	if kind, _ := rterr.KindOf(result); kind != rterr.LookupError {
		t.Errorf("kind = %v, want LookupError (SeedRoot must not leak into spawned children)", kind)
	}
}

func TestLastSnapshotReportsTasksAsDoneAfterRun(t *testing.T) {
	root := lambda([]opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewInt(3)})

	s := New(heap.New(0), false)
	if _, _, err := s.Run(root, value.NewTuple(nil)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := s.LastSnapshot()
	if len(snap) != 1 {
		t.Fatalf("LastSnapshot = %v, want exactly one task", snap)
	}
	if snap[0].Status != "done" || snap[0].Failed {
		t.Errorf("snap[0] = %+v, want Status=done Failed=false", snap[0])
	}
}

// hostSatisfied is a compile-time check that Scheduler implements
// interp.TaskHost.
var _ interp.TaskHost = (*Scheduler)(nil)
