// Package decoder turns file bytes into text by trying a fixed sequence of
// character encodings.
package decoder

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

// Encoding names reported in Result.
const (
	EncodingUTF8   = "utf-8"
	EncodingUTF16  = "utf-16"
	EncodingLatin1 = "latin-1"
	EncodingCP1252 = "cp1252"
)

var (
	// ErrBinaryContent is the cause reported for content that is not text.
	ErrBinaryContent = errors.New("binary content")
	// ErrUndecodable is the cause reported when no strategy accepts the content.
	ErrUndecodable = errors.New("no supported text encoding")
)

var (
	utf8ByteOrderMark     = []byte{0xEF, 0xBB, 0xBF}
	utf16BigEndianMark    = []byte{0xFE, 0xFF}
	utf16LittleEndianMark = []byte{0xFF, 0xFE}
	replacementCharacter  = string(utf8.RuneError)
	firstC1ControlByte    = byte(0x80)
	lastC1ControlByte     = byte(0x9F)
	firstC1ControlRune    = rune(0x80)
	lastC1ControlRune     = rune(0x9F)
)

// Result is a successful decoding.
type Result struct {
	Text     string
	Encoding string
}

type strategy struct {
	name   string
	decode func(data []byte) (string, bool)
}

// Decoder applies decoding strategies in order until one accepts the input.
type Decoder struct {
	strategies []strategy
}

// New returns a Decoder. UTF-8 and BOM-marked UTF-16 are tried first; the
// latin-1 and cp1252 strategies run only for content that does not look binary.
func New() *Decoder {
	return &Decoder{strategies: []strategy{
		{name: EncodingLatin1, decode: decodeLatin1},
		{name: EncodingCP1252, decode: decodeCP1252},
	}}
}

// Decode converts data to text. Failures are returned as a cause suitable for
// an UnreadableFile error.
func (decoder *Decoder) Decode(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{Text: "", Encoding: EncodingUTF8}, nil
	}
	if text, accepted := decodeUTF16(data); accepted {
		return Result{Text: text, Encoding: EncodingUTF16}, nil
	}
	if utils.ContainsNullByte(data) {
		return Result{}, ErrBinaryContent
	}
	if text, accepted := decodeUTF8(data); accepted {
		return Result{Text: text, Encoding: EncodingUTF8}, nil
	}
	// Sniffing only applies once valid UTF-8 is ruled out, so text that opens
	// with a media signature still decodes.
	if utils.IsMediaMimeType(utils.DetectMimeType(data)) {
		return Result{}, ErrBinaryContent
	}
	for _, candidate := range decoder.strategies {
		if text, accepted := candidate.decode(data); accepted {
			return Result{Text: text, Encoding: candidate.name}, nil
		}
	}
	return Result{}, ErrUndecodable
}

// DecodeFile reads and decodes the file at path. Errors are *types.PathError
// values of kind UnreadableFile or PermissionDenied.
func (decoder *Decoder) DecodeFile(path string) (Result, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return Result{}, types.ClassifyFileError(path, readErr)
	}
	result, decodeErr := decoder.Decode(data)
	if decodeErr != nil {
		return Result{}, types.NewPathError(types.KindUnreadableFile, path, decodeErr)
	}
	return result, nil
}

func hasUTF16ByteOrderMark(data []byte) bool {
	return bytes.HasPrefix(data, utf16BigEndianMark) || bytes.HasPrefix(data, utf16LittleEndianMark)
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(bytes.TrimPrefix(data, utf8ByteOrderMark)), true
}

func decodeUTF16(data []byte) (string, bool) {
	if !hasUTF16ByteOrderMark(data) || len(data)%2 != 0 {
		return "", false
	}
	utf16Encoding := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	text, accepted := decodeWith(utf16Encoding, data)
	if !accepted || strings.Contains(text, replacementCharacter) {
		return "", false
	}
	return text, true
}

func decodeLatin1(data []byte) (string, bool) {
	for _, value := range data {
		if value >= firstC1ControlByte && value <= lastC1ControlByte {
			return "", false
		}
	}
	return decodeWith(charmap.ISO8859_1, data)
}

func decodeCP1252(data []byte) (string, bool) {
	text, accepted := decodeWith(charmap.Windows1252, data)
	if !accepted {
		return "", false
	}
	for _, character := range text {
		if character == utf8.RuneError || (character >= firstC1ControlRune && character <= lastC1ControlRune) {
			return "", false
		}
	}
	return text, true
}

func decodeWith(textEncoding encoding.Encoding, data []byte) (string, bool) {
	decoded, decodeErr := textEncoding.NewDecoder().Bytes(data)
	if decodeErr != nil {
		return "", false
	}
	return string(decoded), true
}
