package runtime

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/quillrt/quill/internal/bytecode"
	"github.com/quillrt/quill/internal/value"
)

// ErrFormat distinguishes a malformed/unsupported code image from
// every other failure, so cmd/quillrun can map it onto spec §6's exit
// code 2 ("bytecode format/version mismatch") rather than the generic
// exit code 1.
var ErrFormat = errors.New("runtime: bytecode format or version mismatch")

// LoadProgram reads path and decodes it into a root task Lambda ready
// to hand to a Scheduler. Files ending in ".qbtxt" are decoded as the
// text IR companion format; anything else is treated as the binary
// image.
func LoadProgram(path string) (*value.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runtime: reading %s: %w", path, err)
	}

	var img *bytecode.Image
	if strings.HasSuffix(path, ".qbtxt") {
		img, err = bytecode.DecodeText(string(data))
	} else {
		img, err = bytecode.Decode(data)
	}
	if err != nil {
		if errors.Is(err, bytecode.ErrBadMagic) || errors.Is(err, bytecode.ErrUnsupportedVer) {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
		}
		return nil, fmt.Errorf("runtime: decoding %s: %w", path, err)
	}

	instData := img.ToInstructionsData()
	entry, _ := instData.EntryOffset("__main__")
	body := value.NewInstructions(instData)
	return value.NewLambda(&value.Lambda{Body: body, Entry: entry, Static: true}), nil
}
