package tokenizer

import (
	"fmt"
	"slices"
	"strings"
)

// Char maps every distinct rune of a corpus to an id, in rune order.
type Char struct {
	runes []rune
	ids   map[rune]int32
}

// NewChar builds the vocabulary of corpus.
func NewChar(corpus string) *Char {
	seen := make(map[rune]struct{})
	for _, r := range corpus {
		seen[r] = struct{}{}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	slices.Sort(runes)
	return NewCharFromVocab(string(runes))
}

// NewCharFromVocab restores a vocabulary saved with Vocab. Id i is the
// i-th rune of vocab.
func NewCharFromVocab(vocab string) *Char {
	c := &Char{ids: make(map[rune]int32)}
	for _, r := range vocab {
		if _, ok := c.ids[r]; ok {
			continue
		}
		c.ids[r] = int32(len(c.runes)) //nolint:gosec // G115: rune count fits in int32.
		c.runes = append(c.runes, r)
	}
	return c
}

// Encode converts text to token IDs. Runes outside the vocabulary fail.
func (c *Char) Encode(text string) ([]int32, error) {
	ids := make([]int32, 0, len(text))
	for pos, r := range text {
		id, ok := c.ids[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q at byte %d", ErrUnknownToken, r, pos)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode converts token IDs back to text.
func (c *Char) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	for _, id := range tokens {
		if id < 0 || int(id) >= len(c.runes) {
			return "", fmt.Errorf("%w: id %d", ErrUnknownToken, id)
		}
		sb.WriteRune(c.runes[id])
	}
	return sb.String(), nil
}

// VocabSize returns the number of distinct runes.
func (c *Char) VocabSize() int {
	return len(c.runes)
}

// Vocab returns the vocabulary as a string, id order.
func (c *Char) Vocab() string {
	return string(c.runes)
}

// Name returns "char".
func (c *Char) Name() string {
	return "char"
}
