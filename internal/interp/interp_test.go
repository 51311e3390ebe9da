package interp

import (
	"testing"

	"github.com/quillrt/quill/internal/heap"
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

// instr builds an Instruction with no debug position, which is all
// these tests need.
func instr(op opcode.Op, operand int64) opcode.Instruction {
	return opcode.Instruction{Op: op, Operand: operand}
}

// rootTask wraps code into a zero-argument, non-native Lambda suitable
// for interp.New, the way a compiled program's implicit entry point
// would look.
func rootTask(code []opcode.Instruction, consts []*value.Object) *value.Object {
	body := value.NewInstructions(&value.InstructionsData{Code: code, Consts: consts})
	return value.NewLambda(&value.Lambda{Body: body, Static: true})
}

func run(t *testing.T, code []opcode.Instruction, consts []*value.Object) (*Machine, StepResult) {
	t.Helper()
	h := heap.New(0)
	task := rootTask(code, consts)
	m, err := New(h, nil, task, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, m.StepUntilYieldOrDone()
}

func TestArithmeticAndReturn(t *testing.T) {
	// const 2; const 3; add; return  ->  5
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpConst, 1),
		instr(opcode.OpAdd, 0),
		instr(opcode.OpReturn, 0),
	}
	consts := []*value.Object{value.NewInt(2), value.NewInt(3)}
	_, res := run(t, code, consts)
	if res.Status != Done {
		t.Fatalf("status = %v, want Done", res.Status)
	}
	if res.Value.Kind != value.KindInt || res.Value.Int != 5 {
		t.Errorf("result = %v, want Int(5)", res.Value)
	}
}

func TestDefineThenAssignReturnsMergedValue(t *testing.T) {
	// x := 1; x = 2; return x
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpDefine, 0),
		instr(opcode.OpPop, 0),
		instr(opcode.OpConst, 1),
		instr(opcode.OpAssign, 0),
		instr(opcode.OpPop, 0),
		instr(opcode.OpLoad, 0),
		instr(opcode.OpReturn, 0),
	}
	consts := []*value.Object{value.NewInt(1), value.NewInt(2), value.NewString("x")}
	// name constant must be indexable too; OpDefine/OpAssign/OpLoad
	// operand is a name-constant index, reuse slot 2 for "x".
	code[1].Operand = 2
	code[4].Operand = 2
	code[6].Operand = 2

	_, res := run(t, code, consts)
	if res.Status != Done {
		t.Fatalf("status = %v, want Done", res.Status)
	}
	if res.Value.Kind != value.KindInt || res.Value.Int != 2 {
		t.Errorf("result = %v, want Int(2)", res.Value)
	}
}

func TestRaiseCaughtByBoundaryResumesAtResumeOffset(t *testing.T) {
	// boundary {
	//   raise 99
	//   const 0  <- skipped, boundary resumes past here
	// }
	// <resume point>: const 7; return
	//
	// Layout:
	//   0 enter_boundary  -> resume at 4
	//   1 const 0 (99)
	//   2 raise
	//   3 const 1 (0)      (dead code if catch works)
	//   4 const 2 (7)
	//   5 return
	code := []opcode.Instruction{
		instr(opcode.OpEnterBoundary, 0), // patched below
		instr(opcode.OpConst, 0),
		instr(opcode.OpRaise, 0),
		instr(opcode.OpConst, 1),
		instr(opcode.OpConst, 2),
		instr(opcode.OpReturn, 0),
	}
	// enter_boundary's operand is relative to the IP just past itself
	// (IP==1 at resolution time), landing on index 4.
	code[0].Operand = int64(4-1) + 4
	consts := []*value.Object{value.NewInt(99), value.NewInt(0), value.NewInt(7)}

	_, res := run(t, code, consts)
	if res.Status != Done {
		t.Fatalf("status = %v, want Done", res.Status)
	}
	if res.Value.Kind != value.KindInt || res.Value.Int != 7 {
		t.Errorf("result = %v, want Int(7) (caught and resumed past the raise)", res.Value)
	}
}

func TestUncaughtRaiseFails(t *testing.T) {
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpRaise, 0),
	}
	consts := []*value.Object{value.NewInt(1)}
	_, res := run(t, code, consts)
	if res.Status != Failed {
		t.Fatalf("status = %v, want Failed", res.Status)
	}
	if res.Value.Kind != value.KindInt || res.Value.Int != 1 {
		t.Errorf("result = %v, want the raised value Int(1) (raise propagates any value, not just Err records)", res.Value)
	}
}

func TestAssertFailureRaisesAssertionError(t *testing.T) {
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpAssert, 0),
	}
	consts := []*value.Object{value.NewBool(false)}
	_, res := run(t, code, consts)
	if res.Status != Failed {
		t.Fatalf("status = %v, want Failed", res.Status)
	}
	if kind, _ := rterr.KindOf(res.Value); kind != rterr.AssertionError {
		t.Errorf("kind = %v, want AssertionError", kind)
	}
}

func TestBytesSliceAssignWritesThroughKeyVal(t *testing.T) {
	// bytes := b"     !"; bytes = (0..5):65; return bytes
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpDefine, 4),
		instr(opcode.OpPop, 0),
		instr(opcode.OpConst, 1), // lo 0
		instr(opcode.OpConst, 2), // hi 5
		instr(opcode.OpMakeRange, 0),
		instr(opcode.OpConst, 3), // 65 ('A')
		instr(opcode.OpMakeKeyVal, 0),
		instr(opcode.OpAssign, 4),
		instr(opcode.OpPop, 0),
		instr(opcode.OpLoad, 4),
		instr(opcode.OpReturn, 0),
	}
	consts := []*value.Object{
		value.NewBytes([]byte("     !")),
		value.NewInt(0),
		value.NewInt(5),
		value.NewInt(65),
		value.NewString("bytes"),
	}
	_, res := run(t, code, consts)
	if res.Status != Done {
		t.Fatalf("status = %v, want Done", res.Status)
	}
	if res.Value.Kind != value.KindBytes || string(res.Value.Bytes) != "AAAAA!" {
		t.Errorf("result = %q, want %q", res.Value.Bytes, "AAAAA!")
	}
}

// fakeHost is a minimal TaskHost: it runs the spawned lambda to
// completion eagerly on Spawn, so Poll always reports finished. Good
// enough to exercise the await-task retry loop without a real
// scheduler.
type fakeHost struct {
	results map[*value.Object]*value.Object
}

func (h *fakeHost) Spawn(callee, args *value.Object) (*value.Object, error) {
	sub, err := New(heap.New(0), nil, callee, args)
	if err != nil {
		return nil, err
	}
	res := sub.StepUntilYieldOrDone()
	if h.results == nil {
		h.results = make(map[*value.Object]*value.Object)
	}
	h.results[callee] = res.Value
	return callee, nil
}

func (h *fakeHost) Poll(handle *value.Object) (finished bool, result *value.Object, failed bool) {
	v, ok := h.results[handle]
	return ok, v, false
}

// TestDynamicLambdaCallMutatesParamsInPlace exercises spec scenario 1
// end-to-end through real bytecode: `f := (x => 0) -> x + 1; f(x => 5);
// keyof f` must evaluate to `(x => 5,)`. OpMakeLambdaDynamic is what
// makes the dynamic (mutate-in-place) variant reachable from an actual
// instruction stream, rather than only from a hand-built Lambda literal.
//
// Layout:
//   0  const 0            ; Null capture
//   1  const 1            ; declaration-time params (x => 0)
//   2  make_lambda_dyn  6 ; entry = 6, consumes capture+params
//   3  define "f"
//   4  pop
//   5  jump  11           ; skip the callee body laid out right after it
//   6  load "arguments"   ; -- callee body --
//   7  get_member "x"
//   8  const 1            ; literal 1
//   9  add
//   10 return
//   11 load "f"           ; -- caller resumes --
//   12 const "x"
//   13 const 5
//   14 make_named         ; (x => 5)
//   15 pack_n 1
//   16 call
//   17 pop                ; discard the call's result (6)
//   18 load "f"
//   19 keyof
//   20 return
func TestDynamicLambdaCallMutatesParamsInPlace(t *testing.T) {
	consts := []*value.Object{
		value.Null(), // 0: capture
		value.NewTuple([]*value.Object{value.NewNamed(value.NewString("x"), value.NewInt(0))}), // 1: declaration-time params
		value.NewInt(1),               // 2: literal 1
		value.NewString("f"),          // 3: name "f"
		value.NewString("arguments"),  // 4: name "arguments"
		value.NewString("x"),          // 5: name/key "x"
		value.NewInt(5),               // 6: call argument value
	}
	code := []opcode.Instruction{
		instr(opcode.OpConst, 0),             // 0
		instr(opcode.OpConst, 1),             // 1
		instr(opcode.OpMakeLambdaDynamic, 6), // 2
		instr(opcode.OpDefine, 3),            // 3
		instr(opcode.OpPop, 0),               // 4
		instr(opcode.OpJump, 9),              // 5: IP after fetch=6; target=11 -> operand = 11-6+4=9

		instr(opcode.OpLoad, 4),      // 6: -- callee body --
		instr(opcode.OpGetMember, 5), // 7
		instr(opcode.OpConst, 2),     // 8
		instr(opcode.OpAdd, 0),       // 9
		instr(opcode.OpReturn, 0),    // 10

		instr(opcode.OpLoad, 3),      // 11: -- caller resumes --
		instr(opcode.OpConst, 5),     // 12
		instr(opcode.OpConst, 6),     // 13
		instr(opcode.OpMakeNamed, 0), // 14
		instr(opcode.OpPackN, 1),     // 15
		instr(opcode.OpCall, 0),      // 16
		instr(opcode.OpPop, 0),       // 17
		instr(opcode.OpLoad, 3),      // 18
		instr(opcode.OpKeyOf, 0),     // 19
		instr(opcode.OpReturn, 0),    // 20
	}

	_, res := run(t, code, consts)
	if res.Status != Done {
		t.Fatalf("status = %v, want Done (value %v)", res.Status, res.Value)
	}
	if res.Value.Kind != value.KindTuple || len(res.Value.Tuple) != 1 {
		t.Fatalf("keyof f = %v, want a one-element Tuple", res.Value)
	}
	entry := res.Value.Tuple[0]
	if entry.Kind != value.KindNamed || entry.KV[0].Str != "x" {
		t.Fatalf("keyof f's entry = %v, want Named(\"x\", ...)", entry)
	}
	if entry.KV[1].Kind != value.KindInt || entry.KV[1].Int != 5 {
		t.Errorf("keyof f's x = %v, want Int(5) (the last call's argument, not the declaration default 0)", entry.KV[1])
	}
}

func TestSpawnAndAwaitTaskRoundTrip(t *testing.T) {
	inner := rootTask([]opcode.Instruction{
		instr(opcode.OpConst, 0),
		instr(opcode.OpReturn, 0),
	}, []*value.Object{value.NewInt(41)})

	host := &fakeHost{}
	outerHeap := heap.New(0)

	code := []opcode.Instruction{
		instr(opcode.OpConst, 0), // push inner as callee
		instr(opcode.OpPackN, 0), // empty args tuple
		instr(opcode.OpSpawnTask, 0),
		instr(opcode.OpAwaitTask, 0),
		instr(opcode.OpReturn, 0),
	}
	consts := []*value.Object{inner}

	task := rootTask(code, consts)
	m, err := New(outerHeap, host, task, value.NewTuple(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := m.StepUntilYieldOrDone()
	if res.Status != Done {
		t.Fatalf("status = %v, want Done", res.Status)
	}
	if res.Value.Kind != value.KindInt || res.Value.Int != 41 {
		t.Errorf("result = %v, want Int(41)", res.Value)
	}
}
