// Package interp implements the bytecode dispatch loop: the fetch
// decode execute cycle that drives one task's Context through its
// Instructions, and the single public entry point the scheduler calls
// once per turn, step_until_yield_or_done. It knows how to construct
// and mutate values (via internal/value), allocate and release them
// (via internal/heap), and resolve/bind names and non-local control
// (via internal/context); it knows nothing about how many tasks exist
// or how they are scheduled relative to one another — that is
// internal/scheduler's job, reached only through the narrow TaskHost
// seam below.
package interp

import (
	"errors"
	"fmt"

	"github.com/quillrt/quill/internal/context"
	"github.com/quillrt/quill/internal/heap"
	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

// Status is the outcome of one step_until_yield_or_done call.
type Status uint8

const (
	// Running is never returned to the scheduler; step_until_yield_or_done
	// never returns control while the machine can still make progress. It
	// exists so the internal single-opcode step has a "keep going" value
	// distinct from the three terminal/suspend states below.
	Running Status = iota
	// Yielded means the task suspended at await-task on a target that
	// has not finished; Await names the target. The scheduler re-enters
	// with another StepUntilYieldOrDone call on a later turn once the
	// awaited task may have advanced.
	Yielded
	// Done means the task's root lambda returned; Value is its result.
	Done
	// Failed means the task's root lambda raised with no boundary left
	// to catch it; Value is the Err-aliased record.
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Yielded:
		return "Yielded"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// StepResult reports what step_until_yield_or_done produced.
type StepResult struct {
	Status Status
	Value  *value.Object // Done: the task's result. Failed: the Err record.
	Await  *value.Object // Yielded: the task handle being waited on.
}

// TaskHost is the narrow seam a Machine uses to spawn and query other
// tasks for the concurrency opcodes, implemented by internal/scheduler.
// A Machine constructed with a nil Host runs spawn-task/await-task as
// an ArgumentError — used for the synchronous sub-evaluation
// collect-filter performs, where a predicate suspending makes no sense.
type TaskHost interface {
	// Spawn starts a new, isolated task running callee(args) and
	// returns callee itself as the task handle, per spec semantics
	// ("async f(args) ... returns the lambda as a task handle").
	Spawn(callee, args *value.Object) (*value.Object, error)
	// Poll reports whether handle's task has finished and, if so, its
	// terminal value (the Done result or the Failed error record).
	Poll(handle *value.Object) (finished bool, value *value.Object, failed bool)
}

var errNoHost = errors.New("interp: no task host configured for spawn/await")

// Machine drives one task's Context through one InstructionsData. Task
// is the task's root lambda — the same object callers use as a task
// handle and that emit/async/await address by identity.
type Machine struct {
	Heap *heap.Heap
	Ctx  *context.Context
	Host TaskHost
	Task *value.Object

	CodeObj *value.Object // KindInstructions; owns Code below
	Code    *value.InstructionsData
	IP      uint32

	pendingAwait *value.Object
}

// New constructs a Machine ready to run task(args) from its declared
// entry point. task must be a KindLambda whose body is Instructions.
func New(h *heap.Heap, host TaskHost, task, args *value.Object) (*Machine, error) {
	if task.Kind != value.KindLambda {
		return nil, fmt.Errorf("%w: task root must be a Lambda, got %s", value.ErrKindMismatch, task.Kind)
	}
	if task.Lambda.IsNative() {
		return nil, fmt.Errorf("%w: task root must be a bytecode lambda, not a native module", value.ErrKindMismatch)
	}
	assembled := context.BindArguments(task, args)
	m := &Machine{
		Heap: h,
		Ctx:  context.New(),
		Host: host,
		Task: task,
		IP:   task.Lambda.Entry,
	}
	m.setCode(task.Lambda.Body)
	m.Ctx.PushFunctionFrame(task, assembled, 0, nil) // ReturnCode nil marks the task root
	return m, nil
}

// setCode installs obj (a KindInstructions object) as the machine's
// current code, used both at construction and on every call/return
// that crosses into a different lambda's body.
func (m *Machine) setCode(obj *value.Object) {
	m.CodeObj = obj
	m.Code = obj.Instr
}

// StepUntilYieldOrDone drives the machine through as many opcodes as
// it takes to reach a suspend or terminal state: Yielded (blocked on
// await-task), Done (the root lambda returned) or Failed (an uncaught
// raise). It is always safe to call again after a Yielded result: the
// machine remembers the awaited handle, and the next call re-polls that
// target before running any further instruction, suspending again if it
// has still not finished.
func (m *Machine) StepUntilYieldOrDone() StepResult {
	for {
		res, err := m.step()
		if err != nil {
			return m.fail(err)
		}
		if res.Status != Running {
			return res
		}
	}
}

func (m *Machine) fail(err error) StepResult {
	return StepResult{Status: Failed, Value: rterr.FromOperatorError(err)}
}

// raiseRecord routes an already-built Err-aliased record through the
// task's boundary chain, per spec §7: a boundary in scope resumes
// execution with the record on top of the stack; no boundary left
// aborts the task with it as the terminal value.
func (m *Machine) raiseRecord(rec *value.Object) (StepResult, error) {
	resumeIP, caught := m.Ctx.Raise(rec)
	if !caught {
		return StepResult{Status: Failed, Value: rec}, nil
	}
	m.IP = resumeIP
	return StepResult{Status: Running}, nil
}

// raiseOrFail maps one of the value package's sentinel operator
// failures onto its taxonomy record and raises it.
func (m *Machine) raiseOrFail(err error) (StepResult, error) {
	return m.raiseRecord(m.Heap.Alloc(rterr.FromOperatorError(err)))
}

// pop and push are the operand-stack primitives every opcode handler
// composes; push installs an object the caller already owns (resolved
// from a binding, a constant, or another stack slot), pushNew installs
// a freshly constructed value and registers it with the heap first.
func (m *Machine) pop() (*value.Object, error) { return m.Ctx.PopOperand() }
func (m *Machine) push(v *value.Object)        { m.Ctx.PushOperand(v) }
func (m *Machine) pushNew(v *value.Object)     { m.push(m.Heap.Alloc(v)) }

// step executes exactly one instruction and reports whether the
// machine should keep running.
func (m *Machine) step() (StepResult, error) {
	if m.pendingAwait != nil {
		return m.continueAwait()
	}
	if int(m.IP) >= len(m.Code.Code) {
		return StepResult{}, fmt.Errorf("interp: instruction pointer %d out of range (code length %d)", m.IP, len(m.Code.Code))
	}
	in := m.Code.Code[m.IP]
	m.IP++

	switch in.Op {
	case opcode.OpNop:
		return StepResult{Status: Running}, nil
	case opcode.OpPop:
		_, err := m.Ctx.PopOperand()
		return ok(err)
	case opcode.OpDup:
		return m.opDup()
	case opcode.OpSwap:
		return m.opSwap()
	case opcode.OpPackN:
		return m.opPackN(in)
	case opcode.OpUnpack:
		return m.opUnpack()
	case opcode.OpConst:
		return m.opConst(in)

	case opcode.OpAdd, opcode.OpSub, opcode.OpMul, opcode.OpDiv, opcode.OpMod, opcode.OpPow:
		return m.opBinary(in.Op)
	case opcode.OpNeg:
		return m.opUnary(value.Neg)

	case opcode.OpEq, opcode.OpNe, opcode.OpLt, opcode.OpLe, opcode.OpGt, opcode.OpGe:
		return m.opCompare(in.Op)

	case opcode.OpAnd, opcode.OpOr, opcode.OpXor, opcode.OpShl, opcode.OpShr:
		return m.opBitwise(in.Op)
	case opcode.OpNot:
		return m.opUnary(value.Not)

	case opcode.OpDefine:
		return m.opDefine(in)
	case opcode.OpAssign:
		return m.opAssign(in)
	case opcode.OpLoad:
		return m.opLoad(in, false)
	case opcode.OpLoadDynamic:
		return m.opLoad(in, true)

	case opcode.OpMakeKeyVal:
		return m.opMakePair(value.NewKeyVal)
	case opcode.OpMakeNamed:
		return m.opMakePair(value.NewNamed)
	case opcode.OpMakeRange:
		return m.opMakeRange()
	case opcode.OpMakeWrapper:
		return m.opMakeWrapper()
	case opcode.OpMakeLazyFilter:
		return m.opMakeLazyFilter()
	case opcode.OpMakeLambda:
		return m.opMakeLambda(in, false)
	case opcode.OpMakeLambdaDynamic:
		return m.opMakeLambda(in, true)

	case opcode.OpGetMember:
		return m.opGetMember(in)
	case opcode.OpSetMember:
		return m.opSetMember(in)
	case opcode.OpGetIndex:
		return m.opGetIndex()
	case opcode.OpSetIndex:
		return m.opSetIndex()

	case opcode.OpCall:
		return m.opCall()

	case opcode.OpJump:
		m.IP = uint32(int64(m.IP) - 4 + in.Operand)
		return StepResult{Status: Running}, nil
	case opcode.OpJumpIfFalse:
		return m.opJumpIfFalse(in)
	case opcode.OpEnterFrame:
		m.Ctx.PushBlockFrame()
		return StepResult{Status: Running}, nil
	case opcode.OpLeaveFrame:
		_, err := m.Ctx.PopFrame()
		return ok(err)
	case opcode.OpEnterBoundary:
		resume := uint32(int64(m.IP) - 4 + in.Operand)
		m.Ctx.PushBoundaryFrame(resume)
		return StepResult{Status: Running}, nil
	case opcode.OpLeaveBoundary:
		_, err := m.Ctx.PopFrame()
		return ok(err)
	case opcode.OpRaise:
		return m.opRaise()
	case opcode.OpReturn:
		return m.opReturn()
	case opcode.OpEmit:
		return m.opEmit()
	case opcode.OpBreakCarrying, opcode.OpContinueCarrying:
		return m.opCarrying()
	case opcode.OpBindObject:
		return m.opBindObject()
	case opcode.OpAttachAlias:
		return m.opAttachAlias(in)
	case opcode.OpWipeAlias:
		return m.opUnaryValue(value.WipeAlias)
	case opcode.OpCopy:
		return m.opUnaryValue(value.Copy)
	case opcode.OpDeepCopy:
		return m.opUnaryValue(value.DeepCopy)
	case opcode.OpCollectFilter:
		return m.opCollectFilter()

	case opcode.OpSpawnTask:
		return m.opSpawnTask()
	case opcode.OpAwaitTask:
		return m.opAwaitTask()

	case opcode.OpTypeOf:
		return m.opTypeOf()
	case opcode.OpAliasOf:
		return m.opUnaryValue(value.AliasOf)
	case opcode.OpKeyOf:
		return m.opReflectErr(value.KeyOf)
	case opcode.OpValueOf:
		return m.opReflectErr(value.ValueOf)
	case opcode.OpCaptureOf:
		return m.opReflectErr(value.CaptureOf)
	case opcode.OpLengthOf:
		return m.opLengthOf()
	case opcode.OpAssert:
		return m.opAssert()

	default:
		return StepResult{}, fmt.Errorf("interp: unimplemented opcode %s", in.Op)
	}
}

// ok turns a plain error (from a Context stack-discipline violation —
// a compiler bug, not a runtime-raisable failure) into a step result.
func ok(err error) (StepResult, error) {
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Status: Running}, nil
}

func constAt(code *value.InstructionsData, in opcode.Instruction) (*value.Object, error) {
	idx := int(in.Operand)
	if idx < 0 || idx >= len(code.Consts) {
		return nil, fmt.Errorf("interp: constant index %d out of range (pool size %d)", idx, len(code.Consts))
	}
	return code.Consts[idx], nil
}

func nameConstAt(code *value.InstructionsData, in opcode.Instruction) (string, error) {
	c, err := constAt(code, in)
	if err != nil {
		return "", err
	}
	if c.Kind != value.KindString {
		return "", fmt.Errorf("%w: name constant must be String, got %s", value.ErrKindMismatch, c.Kind)
	}
	return c.Str, nil
}
