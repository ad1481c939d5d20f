// Package tokenizer turns corpus text into the token ids the language model
// trains on.
//
// Supported tokenizers:
//   - Char: one id per distinct rune of a corpus
//   - TikToken: OpenAI BPE encodings (cl100k_base, r50k_base, ...)
//   - Compact: renumbers a base tokenizer to the ids a corpus actually uses
//
// Example usage:
//
//	import "github.com/zbxzc35/RNN-Experiments/tokenizer"
//
//	tok, err := tokenizer.New("char", corpus)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := tok.Encode(corpus)
package tokenizer

import "github.com/zbxzc35/RNN-Experiments/internal/tokenizer"

// Tokenizer converts text to ids and back.
type Tokenizer = tokenizer.Tokenizer

// ErrUnknownToken is returned for text or ids outside a vocabulary.
var ErrUnknownToken = tokenizer.ErrUnknownToken

// New returns a "char" tokenizer built from corpus, or the named tiktoken
// encoding compacted to corpus.
func New(kind, corpus string) (Tokenizer, error) {
	return tokenizer.New(kind, corpus)
}

// Char is a character level tokenizer.
type Char = tokenizer.Char

// NewChar builds a character vocabulary from corpus.
func NewChar(corpus string) *Char {
	return tokenizer.NewChar(corpus)
}

// NewCharFromVocab restores a Char tokenizer from Char.Vocab output.
func NewCharFromVocab(vocab string) *Char {
	return tokenizer.NewCharFromVocab(vocab)
}

// TikToken wraps a tiktoken BPE encoding.
type TikToken = tokenizer.TikToken

// NewTikToken loads the named encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// Compact maps a base tokenizer onto a dense vocabulary.
type Compact = tokenizer.Compact

// NewCompact keeps only the base ids that occur in corpus.
func NewCompact(base Tokenizer, corpus string) (*Compact, error) {
	return tokenizer.NewCompact(base, corpus)
}
