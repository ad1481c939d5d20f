package tokenizer

import (
	"errors"
	"fmt"
)

// ErrUnknownToken is returned when text or ids fall outside a vocabulary.
var ErrUnknownToken = errors.New("tokenizer: unknown token")

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size; every id produced by
	// Encode is below it.
	VocabSize() int

	// Name identifies the tokenizer for checkpoints and logs.
	Name() string
}

// New returns the tokenizer called kind, trained on corpus where needed:
// "char" builds a Char vocabulary; any other value is a tiktoken encoding
// name compacted to corpus.
func New(kind, corpus string) (Tokenizer, error) {
	if kind == "char" {
		return NewChar(corpus), nil
	}
	base, err := NewTikToken(kind)
	if err != nil {
		return nil, err
	}
	tok, err := NewCompact(base, corpus)
	if err != nil {
		return nil, fmt.Errorf("compact %s: %w", kind, err)
	}
	return tok, nil
}
