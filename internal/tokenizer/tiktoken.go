package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

var errMissingEncoding = errors.New("tokenizer encoding not initialized")

// tiktokenCounter encodes file contents as ordinary text, so special-token
// markers that appear inside a source file count like any other characters.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	label    string
}

func (counter tiktokenCounter) Name() string {
	return counter.label
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errMissingEncoding
	}
	if input == "" {
		return 0, nil
	}
	return len(counter.encoding.EncodeOrdinary(input)), nil
}
