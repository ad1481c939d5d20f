package tokenizer

import (
	"fmt"
	"slices"
)

// Compact renumbers the ids a base tokenizer produces on a corpus into the
// dense range [0, n).
type Compact struct {
	base   Tokenizer
	toBase []int32
	ids    map[int32]int32
}

// NewCompact encodes corpus with base and keeps the ids it uses, in
// ascending base id order.
func NewCompact(base Tokenizer, corpus string) (*Compact, error) {
	ids, err := base.Encode(corpus)
	if err != nil {
		return nil, err
	}
	used := slices.Clone(ids)
	slices.Sort(used)
	return NewCompactFromIDs(base, slices.Compact(used)), nil
}

// NewCompactFromIDs restores a Compact tokenizer from the base ids returned
// by BaseIDs.
func NewCompactFromIDs(base Tokenizer, baseIDs []int32) *Compact {
	c := &Compact{base: base, ids: make(map[int32]int32, len(baseIDs))}
	for _, id := range baseIDs {
		if _, ok := c.ids[id]; ok {
			continue
		}
		c.ids[id] = int32(len(c.toBase)) //nolint:gosec // G115: vocab size fits in int32.
		c.toBase = append(c.toBase, id)
	}
	return c
}

// Encode converts text to dense token IDs.
func (c *Compact) Encode(text string) ([]int32, error) {
	ids, err := c.base.Encode(text)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		dense, ok := c.ids[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s id %d not in the compact vocabulary", ErrUnknownToken, c.base.Name(), id)
		}
		ids[i] = dense
	}
	return ids, nil
}

// Decode converts dense token IDs back to text.
func (c *Compact) Decode(tokens []int32) (string, error) {
	base := make([]int32, len(tokens))
	for i, id := range tokens {
		if id < 0 || int(id) >= len(c.toBase) {
			return "", fmt.Errorf("%w: id %d", ErrUnknownToken, id)
		}
		base[i] = c.toBase[id]
	}
	return c.base.Decode(base)
}

// VocabSize returns the number of base ids kept.
func (c *Compact) VocabSize() int {
	return len(c.toBase)
}

// BaseIDs returns the kept base ids in dense id order.
func (c *Compact) BaseIDs() []int32 {
	return slices.Clone(c.toBase)
}

// Name returns the base tokenizer name.
func (c *Compact) Name() string {
	return c.base.Name()
}
