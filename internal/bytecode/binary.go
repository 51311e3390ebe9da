package bytecode

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

// Magic identifies a Quill compiled code image on disk.
var Magic = [4]byte{'Q', 'L', 'B', 'C'}

// CurrentVersion is the binary format version this package writes.
// Bump when the section layout changes incompatibly.
const CurrentVersion uint16 = 1

// Flags controls optional sections.
type Flags uint16

const (
	FlagNone  Flags = 0
	FlagDebug Flags = 1 << 0 // instructions carry source positions
)

const (
	constNull   byte = 0
	constBool   byte = 1
	constInt    byte = 2
	constFloat  byte = 3
	constString byte = 4
	constBytes  byte = 5
	constRange  byte = 6
)

// Encode serializes img to the binary image format:
//
//	[magic:4] [version:2] [flags:2]
//	[const_count:2] [consts:...]
//	[instr_count:4] [instructions:...]
//	[entry_count:2] [entries:...]
func Encode(img *Image) ([]byte, error) {
	flags := FlagNone
	for _, in := range img.Code {
		if in.HasPos {
			flags |= FlagDebug
			break
		}
	}

	buf := make([]byte, 0, 64+len(img.Code)*13+len(img.Consts)*8)
	buf = append(buf, Magic[:]...)
	buf = binary.BigEndian.AppendUint16(buf, CurrentVersion)
	buf = binary.BigEndian.AppendUint16(buf, uint16(flags))

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(img.Consts)))
	for i, c := range img.Consts {
		encoded, err := encodeConst(c)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding constant %d: %w", i, err)
		}
		buf = append(buf, encoded...)
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(img.Code)))
	for _, in := range img.Code {
		buf = append(buf, byte(in.Op))
		buf = binary.BigEndian.AppendUint64(buf, uint64(in.Operand))
		if flags&FlagDebug != 0 {
			if in.HasPos {
				buf = append(buf, 1)
				buf = binary.BigEndian.AppendUint16(buf, in.Pos.File)
				buf = binary.BigEndian.AppendUint32(buf, in.Pos.Line)
				buf = binary.BigEndian.AppendUint32(buf, in.Pos.Column)
				buf = binary.BigEndian.AppendUint16(buf, in.Pos.Span)
			} else {
				buf = append(buf, 0)
			}
		}
	}

	names := make([]string, 0, len(img.Entries))
	for name := range img.Entries {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic output, as the teacher's writer sorts global names

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(names)))
	for _, name := range names {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(name)))
		buf = append(buf, name...)
		buf = binary.BigEndian.AppendUint32(buf, img.Entries[name])
	}

	return buf, nil
}

func encodeConst(c *value.Object) ([]byte, error) {
	switch c.Kind {
	case value.KindNull:
		return []byte{constNull}, nil
	case value.KindBool:
		b := byte(0)
		if c.Bool {
			b = 1
		}
		return []byte{constBool, b}, nil
	case value.KindInt:
		buf := []byte{constInt}
		return binary.BigEndian.AppendUint64(buf, uint64(c.Int)), nil
	case value.KindFloat:
		buf := []byte{constFloat}
		return binary.BigEndian.AppendUint64(buf, floatBits(c.Float)), nil
	case value.KindString:
		buf := []byte{constString}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Str)))
		return append(buf, c.Str...), nil
	case value.KindBytes:
		buf := []byte{constBytes}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Bytes)))
		return append(buf, c.Bytes...), nil
	case value.KindRange:
		buf := []byte{constRange}
		buf = binary.BigEndian.AppendUint64(buf, uint64(c.RangeLo))
		return binary.BigEndian.AppendUint64(buf, uint64(c.RangeHi)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadConstKind, c.Kind)
	}
}

// Decode parses the binary image format written by Encode.
func Decode(data []byte) (*Image, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: need at least 8 header bytes, got %d", ErrTruncated, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrBadMagic, Magic, data[0:4])
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: image version %d is newer than supported version %d", ErrUnsupportedVer, version, CurrentVersion)
	}
	flags := Flags(binary.BigEndian.Uint16(data[6:8]))
	pos := 8

	constCount, err := readUint16(data, &pos, "constant count")
	if err != nil {
		return nil, err
	}
	consts := make([]*value.Object, constCount)
	for i := range consts {
		c, err := decodeConst(data, &pos)
		if err != nil {
			return nil, fmt.Errorf("decoding constant %d: %w", i, err)
		}
		consts[i] = c
	}

	instrCount, err := readUint32(data, &pos, "instruction count")
	if err != nil {
		return nil, err
	}
	code := make([]opcode.Instruction, instrCount)
	for i := range code {
		if pos+9 > len(data) {
			return nil, fmt.Errorf("%w: reading instruction %d", ErrTruncated, i)
		}
		op := opcode.Op(data[pos])
		pos++
		operand := int64(binary.BigEndian.Uint64(data[pos:]))
		pos += 8
		in := opcode.Instruction{Op: op, Operand: operand}
		if flags&FlagDebug != 0 {
			if pos >= len(data) {
				return nil, fmt.Errorf("%w: reading instruction %d debug marker", ErrTruncated, i)
			}
			hasPos := data[pos]
			pos++
			if hasPos != 0 {
				if pos+12 > len(data) {
					return nil, fmt.Errorf("%w: reading instruction %d position", ErrTruncated, i)
				}
				in.HasPos = true
				in.Pos.File = binary.BigEndian.Uint16(data[pos:])
				pos += 2
				in.Pos.Line = binary.BigEndian.Uint32(data[pos:])
				pos += 4
				in.Pos.Column = binary.BigEndian.Uint32(data[pos:])
				pos += 4
				in.Pos.Span = binary.BigEndian.Uint16(data[pos:])
				pos += 2
			}
		}
		code[i] = in
	}

	entryCount, err := readUint16(data, &pos, "entry count")
	if err != nil {
		return nil, err
	}
	entries := make(map[string]uint32, entryCount)
	for i := 0; i < int(entryCount); i++ {
		nameLen, err := readUint16(data, &pos, "entry name length")
		if err != nil {
			return nil, err
		}
		if pos+int(nameLen)+4 > len(data) {
			return nil, fmt.Errorf("%w: reading entry %d", ErrTruncated, i)
		}
		name := string(data[pos : pos+int(nameLen)])
		pos += int(nameLen)
		entries[name] = binary.BigEndian.Uint32(data[pos:])
		pos += 4
	}

	return &Image{Code: code, Consts: consts, Entries: entries}, nil
}

func decodeConst(data []byte, pos *int) (*value.Object, error) {
	if *pos >= len(data) {
		return nil, fmt.Errorf("%w: reading constant kind tag", ErrTruncated)
	}
	tag := data[*pos]
	*pos++
	switch tag {
	case constNull:
		return value.Null(), nil
	case constBool:
		if *pos >= len(data) {
			return nil, fmt.Errorf("%w: reading bool constant", ErrTruncated)
		}
		b := data[*pos] != 0
		*pos++
		return value.NewBool(b), nil
	case constInt:
		if *pos+8 > len(data) {
			return nil, fmt.Errorf("%w: reading int constant", ErrTruncated)
		}
		i := int64(binary.BigEndian.Uint64(data[*pos:]))
		*pos += 8
		return value.NewInt(i), nil
	case constFloat:
		if *pos+8 > len(data) {
			return nil, fmt.Errorf("%w: reading float constant", ErrTruncated)
		}
		bits := binary.BigEndian.Uint64(data[*pos:])
		*pos += 8
		return value.NewFloat(floatFromBits(bits)), nil
	case constString:
		n, err := readUint32(data, pos, "string constant length")
		if err != nil {
			return nil, err
		}
		if *pos+int(n) > len(data) {
			return nil, fmt.Errorf("%w: reading string constant", ErrTruncated)
		}
		s := string(data[*pos : *pos+int(n)])
		*pos += int(n)
		return value.NewString(s), nil
	case constBytes:
		n, err := readUint32(data, pos, "bytes constant length")
		if err != nil {
			return nil, err
		}
		if *pos+int(n) > len(data) {
			return nil, fmt.Errorf("%w: reading bytes constant", ErrTruncated)
		}
		b := value.NewBytes(data[*pos : *pos+int(n)])
		*pos += int(n)
		return b, nil
	case constRange:
		if *pos+16 > len(data) {
			return nil, fmt.Errorf("%w: reading range constant", ErrTruncated)
		}
		lo := int64(binary.BigEndian.Uint64(data[*pos:]))
		hi := int64(binary.BigEndian.Uint64(data[*pos+8:]))
		*pos += 16
		return value.NewRange(lo, hi), nil
	default:
		return nil, fmt.Errorf("%w: unknown constant tag %d", ErrBadConstKind, tag)
	}
}

func readUint16(data []byte, pos *int, what string) (uint16, error) {
	if *pos+2 > len(data) {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	v := binary.BigEndian.Uint16(data[*pos:])
	*pos += 2
	return v, nil
}

func readUint32(data []byte, pos *int, what string) (uint32, error) {
	if *pos+4 > len(data) {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	v := binary.BigEndian.Uint32(data[*pos:])
	*pos += 4
	return v, nil
}
