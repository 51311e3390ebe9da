// Package opcode defines the bytecode instruction set shared by the
// decoder, the interpreter loop and the disassembler. It has no
// dependency on the value model so that both sides of the wire format
// (the raw bytes and the in-memory value graph) can import it without
// creating a cycle.
package opcode

import "fmt"

// Op identifies a single bytecode instruction.
type Op byte

const (
	// Stack manipulation (0x00-0x0F)
	OpNop   Op = 0x00
	OpPop   Op = 0x01
	OpDup   Op = 0x02
	OpSwap  Op = 0x03
	OpPackN Op = 0x04 // pack top N stack values into a tuple: operand u16 = N
	OpUnpack Op = 0x05 // unpack ("...") the tuple on top of stack onto the stack

	// Constants (0x10-0x1F)
	OpConst Op = 0x10 // push constant from pool: operand u32 = index

	// Arithmetic (0x20-0x2F)
	OpAdd Op = 0x20
	OpSub Op = 0x21
	OpMul Op = 0x22
	OpDiv Op = 0x23
	OpMod Op = 0x24
	OpPow Op = 0x25
	OpNeg Op = 0x26

	// Comparison (0x30-0x3F)
	OpEq Op = 0x30
	OpNe Op = 0x31
	OpLt Op = 0x32
	OpLe Op = 0x33
	OpGt Op = 0x34
	OpGe Op = 0x35

	// Bitwise / logical (0x40-0x4F)
	OpAnd    Op = 0x40
	OpOr     Op = 0x41
	OpXor    Op = 0x42
	OpNot    Op = 0x43
	OpShl    Op = 0x44
	OpShr    Op = 0x45

	// Binding (0x50-0x5F)
	OpDefine       Op = 0x50 // define-in-current-scope (:=): operand u32 = name constant index
	OpAssign       Op = 0x51 // assign-existing (=): operand u32 = name constant index
	OpLoad         Op = 0x52 // load-by-name, static: operand u32 = name constant index
	OpLoadDynamic  Op = 0x53 // load-by-name-dynamic: operand u32 = name constant index

	// Composite construction (0x60-0x6F)
	OpMakeKeyVal        Op = 0x60
	OpMakeNamed         Op = 0x61
	OpMakeRange         Op = 0x62
	OpMakeWrapper       Op = 0x63
	OpMakeLazyFilter    Op = 0x64
	OpMakeLambda        Op = 0x65 // static (clone-and-bind) lambda: operand u32 = entry index; consumes capture, param tuple
	OpMakeLambdaDynamic Op = 0x66 // dynamic (mutate-in-place) lambda: same operand/stack shape as OpMakeLambda

	// Member / index (0x70-0x7F)
	OpGetMember Op = 0x70 // operand u32 = name constant index
	OpSetMember Op = 0x71 // operand u32 = name constant index
	OpGetIndex  Op = 0x72
	OpSetIndex  Op = 0x73

	// Call (0x80-0x8F)
	OpCall Op = 0x80 // pops argument tuple and callee

	// Control (0x90-0xAF)
	OpJump           Op = 0x90 // operand i32 = relative offset
	OpJumpIfFalse    Op = 0x91 // operand i32 = relative offset
	OpEnterFrame     Op = 0x92
	OpLeaveFrame     Op = 0x93
	OpEnterBoundary  Op = 0x94 // operand i32 = relative offset to resume at if a raise is caught here
	OpLeaveBoundary  Op = 0x95
	OpRaise          Op = 0x96
	OpReturn         Op = 0x97
	OpEmit           Op = 0x98
	OpBreakCarrying  Op = 0x99
	OpContinueCarrying Op = 0x9A
	OpBindObject     Op = 0x9B // bind top-of-stack self into the lambda just below it
	OpAttachAlias    Op = 0x9C // operand u32 = alias string constant index
	OpWipeAlias      Op = 0x9D
	OpCopy           Op = 0x9E
	OpDeepCopy       Op = 0x9F
	OpCollectFilter  Op = 0xA0

	// Concurrency (0xB0-0xBF)
	OpSpawnTask Op = 0xB0 // consumes a lambda and argument tuple
	OpAwaitTask Op = 0xB1 // pops a lambda, suspends until its task finishes

	// Reflection (0xC0-0xCF)
	OpTypeOf    Op = 0xC0
	OpAliasOf   Op = 0xC1
	OpKeyOf     Op = 0xC2
	OpValueOf   Op = 0xC3
	OpCaptureOf Op = 0xC4
	OpLengthOf  Op = 0xC5
	OpAssert    Op = 0xC6
)

var names = map[Op]string{
	OpNop: "nop", OpPop: "pop", OpDup: "dup", OpSwap: "swap", OpPackN: "pack_n", OpUnpack: "unpack",
	OpConst: "const",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod", OpPow: "pow", OpNeg: "neg",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNot: "not", OpShl: "shl", OpShr: "shr",
	OpDefine: "define", OpAssign: "assign", OpLoad: "load", OpLoadDynamic: "load_dyn",
	OpMakeKeyVal: "make_keyval", OpMakeNamed: "make_named", OpMakeRange: "make_range",
	OpMakeWrapper: "make_wrapper", OpMakeLazyFilter: "make_lazy_filter", OpMakeLambda: "make_lambda",
	OpMakeLambdaDynamic: "make_lambda_dyn",
	OpGetMember: "get_member", OpSetMember: "set_member", OpGetIndex: "get_index", OpSetIndex: "set_index",
	OpCall: "call",
	OpJump: "jump", OpJumpIfFalse: "jump_if_false", OpEnterFrame: "enter_frame", OpLeaveFrame: "leave_frame",
	OpEnterBoundary: "enter_boundary", OpLeaveBoundary: "leave_boundary", OpRaise: "raise", OpReturn: "return",
	OpEmit: "emit", OpBreakCarrying: "break", OpContinueCarrying: "continue", OpBindObject: "bind_object",
	OpAttachAlias: "attach_alias", OpWipeAlias: "wipe_alias", OpCopy: "copy", OpDeepCopy: "deep_copy",
	OpCollectFilter: "collect_filter",
	OpSpawnTask: "spawn_task", OpAwaitTask: "await_task",
	OpTypeOf: "typeof", OpAliasOf: "aliasof", OpKeyOf: "keyof", OpValueOf: "valueof",
	OpCaptureOf: "captureof", OpLengthOf: "lengthof", OpAssert: "assert",
}

// String renders the opcode's mnemonic, used by the disassembler and by
// %v in error messages.
func (o Op) String() string {
	if n, ok := names[o]; ok {
		return n
	}
	return fmt.Sprintf("op(0x%02x)", byte(o))
}

var byName map[string]Op

func init() {
	byName = make(map[string]Op, len(names))
	for op, n := range names {
		byName[n] = op
	}
}

// ParseOp resolves a mnemonic back to its Op, the inverse of String.
// Used by the text-IR reader to parse a disassembly listing back into
// an instruction stream.
func ParseOp(mnemonic string) (Op, bool) {
	op, ok := byName[mnemonic]
	return op, ok
}

// OperandWidth is the declared width in bytes of this opcode's operand
// (the u16/u32/i32 noted beside each opcode above). Instructions with no
// listed opcode here carry no operand. The binary image does not use
// these widths: it stores every instruction's operand in a fixed 8-byte
// field.
func (o Op) OperandWidth() int {
	switch o {
	case OpConst, OpDefine, OpAssign, OpLoad, OpLoadDynamic, OpMakeLambda, OpMakeLambdaDynamic,
		OpGetMember, OpSetMember, OpAttachAlias:
		return 4
	case OpPackN:
		return 2
	case OpJump, OpJumpIfFalse, OpEnterBoundary:
		return 4
	default:
		return 0
	}
}

// Pos is a source position a single instruction may be tagged with.
// File is an index into the package's source-file table (see spec §6's
// debug table); Line/Column are 1-based; Span is the token length.
type Pos struct {
	File   uint16
	Line   uint32
	Column uint32
	Span   uint16
}

// Instruction is a single decoded bytecode instruction: an opcode plus
// its inline operand (interpreted per Op.OperandWidth) and, optionally,
// its source position.
type Instruction struct {
	Op      Op
	Operand int64 // sign-extended for jump offsets; otherwise an unsigned index/count
	Pos     Pos
	HasPos  bool
}
