package bytecode

import "testing"

func TestTextRoundTrip(t *testing.T) {
	img := sampleImage()
	text := EncodeText(img)

	got, err := DecodeText(text)
	if err != nil {
		t.Fatalf("DecodeText: unexpected error: %v\n%s", err, text)
	}

	if len(got.Code) != len(img.Code) {
		t.Fatalf("DecodeText: got %d instructions, want %d", len(got.Code), len(img.Code))
	}
	for i := range img.Code {
		if got.Code[i].Op != img.Code[i].Op || got.Code[i].Operand != img.Code[i].Operand {
			t.Errorf("instruction %d = %+v, want %+v", i, got.Code[i], img.Code[i])
		}
		if got.Code[i].HasPos != img.Code[i].HasPos || got.Code[i].Pos != img.Code[i].Pos {
			t.Errorf("instruction %d position = %+v, want %+v", i, got.Code[i].Pos, img.Code[i].Pos)
		}
	}
	if len(got.Consts) != 2 || got.Consts[0].Int != 2 || got.Consts[1].Str != "hi\nthere" {
		t.Errorf("DecodeText consts = %+v, want matching sample", got.Consts)
	}
	if got.Entries["__main__"] != 0 || got.Entries["helper"] != 2 {
		t.Errorf("DecodeText entries = %v, want matching sample", got.Entries)
	}
}

func TestTextEncodeIsStable(t *testing.T) {
	img := sampleImage()
	a := EncodeText(img)
	b := EncodeText(img)
	if a != b {
		t.Errorf("EncodeText is not deterministic across calls on the same Image")
	}
}

func TestDecodeTextRejectsUnknownOpcode(t *testing.T) {
	_, err := DecodeText(".code\n0000 not_a_real_opcode\n")
	if err == nil {
		t.Errorf("DecodeText with an unknown mnemonic: want error, got nil")
	}
}
