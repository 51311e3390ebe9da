package bytecode

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/quillrt/quill/internal/opcode"
	"github.com/quillrt/quill/internal/value"
)

// EncodeText renders img as the human-readable companion listing to
// the binary image: a `.consts` section, a `.entries` section, and a
// `.code` section, in the disassembly style of the teacher's
// Chunk.Disassemble. Unlike that disassembler this one is also a valid
// input to DecodeText — encoding then decoding an Image round-trips it
// bit-for-bit.
func EncodeText(img *Image) string {
	var sb strings.Builder

	sb.WriteString("; quill bytecode text ir\n")
	sb.WriteString(".consts\n")
	for i, c := range img.Consts {
		sb.WriteString(fmt.Sprintf("%d %s\n", i, encodeConstText(c)))
	}

	sb.WriteString(".entries\n")
	names := make([]string, 0, len(img.Entries))
	for name := range img.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("%s %d\n", name, img.Entries[name]))
	}

	sb.WriteString(".code\n")
	for i, in := range img.Code {
		sb.WriteString(fmt.Sprintf("%04d %s", i, in.Op.String()))
		if in.Op.OperandWidth() > 0 {
			sb.WriteString(fmt.Sprintf(" %d", in.Operand))
		}
		if in.HasPos {
			sb.WriteString(fmt.Sprintf(" ; %d:%d:%d:%d", in.Pos.File, in.Pos.Line, in.Pos.Column, in.Pos.Span))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func encodeConstText(c *value.Object) string {
	switch c.Kind {
	case value.KindNull:
		return "null"
	case value.KindBool:
		return fmt.Sprintf("bool %t", c.Bool)
	case value.KindInt:
		return fmt.Sprintf("int %d", c.Int)
	case value.KindFloat:
		return fmt.Sprintf("float %s", strconv.FormatFloat(c.Float, 'g', -1, 64))
	case value.KindString:
		return fmt.Sprintf("string %s", strconv.Quote(c.Str))
	case value.KindBytes:
		return fmt.Sprintf("bytes %s", hex.EncodeToString(c.Bytes))
	case value.KindRange:
		return fmt.Sprintf("range %d %d", c.RangeLo, c.RangeHi)
	default:
		return fmt.Sprintf("; unsupported constant kind %s", c.Kind)
	}
}

// DecodeText parses the format EncodeText produces.
func DecodeText(text string) (*Image, error) {
	img := &Image{Entries: make(map[string]uint32)}
	section := ""
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			section = line
			continue
		}

		switch section {
		case ".consts":
			idx, rest, err := splitIndex(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			c, err := decodeConstText(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			img.Consts = growConsts(img.Consts, idx)
			img.Consts[idx] = c
		case ".entries":
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: malformed entry %q", lineNo, line)
			}
			off, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed entry offset: %w", lineNo, err)
			}
			img.Entries[fields[0]] = uint32(off)
		case ".code":
			in, err := decodeInstructionText(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			img.Code = append(img.Code, in)
		default:
			return nil, fmt.Errorf("line %d: content outside any section", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bytecode: reading text ir: %w", err)
	}
	return img, nil
}

func growConsts(consts []*value.Object, idx int) []*value.Object {
	for len(consts) <= idx {
		consts = append(consts, nil)
	}
	return consts
}

func splitIndex(line string) (int, string, error) {
	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		return 0, "", fmt.Errorf("malformed constant line %q", line)
	}
	idx, err := strconv.Atoi(line[:sp])
	if err != nil {
		return 0, "", fmt.Errorf("malformed constant index in %q: %w", line, err)
	}
	return idx, line[sp+1:], nil
}

func decodeConstText(rest string) (*value.Object, error) {
	kind, body, _ := strings.Cut(rest, " ")
	switch kind {
	case "null":
		return value.Null(), nil
	case "bool":
		b, err := strconv.ParseBool(body)
		if err != nil {
			return nil, fmt.Errorf("malformed bool constant %q: %w", body, err)
		}
		return value.NewBool(b), nil
	case "int":
		i, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed int constant %q: %w", body, err)
		}
		return value.NewInt(i), nil
	case "float":
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed float constant %q: %w", body, err)
		}
		return value.NewFloat(f), nil
	case "string":
		s, err := strconv.Unquote(body)
		if err != nil {
			return nil, fmt.Errorf("malformed string constant %q: %w", body, err)
		}
		return value.NewString(s), nil
	case "bytes":
		b, err := hex.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("malformed bytes constant %q: %w", body, err)
		}
		return value.NewBytes(b), nil
	case "range":
		fields := strings.Fields(body)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed range constant %q", body)
		}
		lo, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range constant %q: %w", body, err)
		}
		hi, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range constant %q: %w", body, err)
		}
		return value.NewRange(lo, hi), nil
	default:
		return nil, fmt.Errorf("unknown constant kind %q", kind)
	}
}

func decodeInstructionText(line string) (opcode.Instruction, error) {
	code, comment, hasComment := strings.Cut(line, ";")
	fields := strings.Fields(code)
	if len(fields) < 2 {
		return opcode.Instruction{}, fmt.Errorf("malformed instruction line %q", line)
	}
	op, ok := opcode.ParseOp(fields[1])
	if !ok {
		return opcode.Instruction{}, fmt.Errorf("unknown opcode mnemonic %q", fields[1])
	}
	in := opcode.Instruction{Op: op}
	if op.OperandWidth() > 0 {
		if len(fields) < 3 {
			return opcode.Instruction{}, fmt.Errorf("opcode %q requires an operand", fields[1])
		}
		operand, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return opcode.Instruction{}, fmt.Errorf("malformed operand %q: %w", fields[2], err)
		}
		in.Operand = operand
	}
	if hasComment {
		parts := strings.Split(strings.TrimSpace(comment), ":")
		if len(parts) == 4 {
			file, _ := strconv.ParseUint(parts[0], 10, 16)
			line, _ := strconv.ParseUint(parts[1], 10, 32)
			column, _ := strconv.ParseUint(parts[2], 10, 32)
			span, _ := strconv.ParseUint(parts[3], 10, 16)
			in.HasPos = true
			in.Pos = opcode.Pos{File: uint16(file), Line: uint32(line), Column: uint32(column), Span: uint16(span)}
		}
	}
	return in, nil
}
