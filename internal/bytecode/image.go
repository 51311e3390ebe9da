// Package bytecode reads and writes the compiled code image: a decoded
// instruction stream, a constant pool of immutable primitive values, a
// table of named entry points, and an optional debug-location table
// merged into the decoded instructions at load time. The binary format
// follows the magic+version+section shape of the teacher's image
// reader/writer; the text form follows its disassembler.
package bytecode

import (
	"errors"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

// Image is the decoded, in-memory form of a compiled code package,
// ready to back a value.InstructionsData.
type Image struct {
	Code    []opcode.Instruction
	Consts  []*value.Object // scalar kinds only; see encodeConst
	Entries map[string]uint32
}

// ToInstructionsData adapts a decoded Image into the payload shape the
// value package's KindInstructions object carries.
func (img *Image) ToInstructionsData() *value.InstructionsData {
	return &value.InstructionsData{
		Code:    img.Code,
		Consts:  img.Consts,
		Entries: img.Entries,
	}
}

var (
	ErrBadMagic       = errors.New("bytecode: bad magic number")
	ErrUnsupportedVer = errors.New("bytecode: unsupported version")
	ErrTruncated      = errors.New("bytecode: unexpected end of data")
	ErrBadConstKind   = errors.New("bytecode: constant pool entry has a non-primitive kind")
)
