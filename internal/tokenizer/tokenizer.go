// Package tokenizer estimates token counts of decoded file contents.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a tiktoken Counter for the requested model together with
// the name reported in summaries. Models unknown to tiktoken fall back to the
// cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := ResolveModel(cfg.Model)
	encoding, err := tiktoken.EncodingForModel(model)
	if err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, label: model}, model, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
	}
	return tiktokenCounter{encoding: fallback, label: defaultEncodingName}, defaultEncodingName, nil
}

// ResolveModel normalizes the requested model name and applies the default.
func ResolveModel(model string) string {
	trimmed := strings.ToLower(strings.TrimSpace(model))
	if trimmed == "" {
		return defaultModel
	}
	return trimmed
}

// CountText counts tokens of already decoded text.
func CountText(counter Counter, text string) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	return counter.CountString(text)
}
