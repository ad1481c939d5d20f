package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingSizes is the number of ordinary BPE ids of each supported
// encoding; tiktoken-go does not expose it.
var encodingSizes = map[string]int{
	"cl100k_base": 100256,
	"p50k_base":   50281,
	"r50k_base":   50257,
}

// TikToken is an OpenAI BPE encoding, used for word-piece level models.
//
// Its id space is large, so corpora are usually tokenized through Compact
// (see New) rather than with TikToken directly.
type TikToken struct {
	enc  *tiktoken.Tiktoken
	name string
	size int
}

// NewTikToken loads the named encoding. The BPE ranks are fetched on first
// use and cached under TIKTOKEN_CACHE_DIR when it is set.
func NewTikToken(encodingName string) (*TikToken, error) {
	size, ok := encodingSizes[encodingName]
	if !ok {
		return nil, fmt.Errorf("tiktoken: unsupported encoding %q", encodingName)
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %q: %w", encodingName, err)
	}
	return &TikToken{enc: enc, name: encodingName, size: size}, nil
}

// Encode implements Tokenizer. Special tokens are encoded as plain text.
func (t *TikToken) Encode(text string) ([]int32, error) {
	ids := t.enc.Encode(text, nil, nil)
	out := make([]int32, len(ids))
	for i, id := range ids {
		if id < 0 || id >= t.size {
			return nil, fmt.Errorf("%w: %s produced id %d", ErrUnknownToken, t.name, id)
		}
		out[i] = int32(id) //nolint:gosec // bounded by t.size
	}
	return out, nil
}

// Decode implements Tokenizer.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	ids := make([]int, len(tokens))
	for i, id := range tokens {
		if id < 0 || int(id) >= t.size {
			return "", fmt.Errorf("%w: %s has no id %d", ErrUnknownToken, t.name, id)
		}
		ids[i] = int(id)
	}
	return t.enc.Decode(ids), nil
}

// VocabSize implements Tokenizer.
func (t *TikToken) VocabSize() int {
	return t.size
}

// Name implements Tokenizer.
func (t *TikToken) Name() string {
	return t.name
}
