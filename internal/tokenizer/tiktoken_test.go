package tokenizer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireEncodingCache skips tests that would download BPE ranks.
func requireEncodingCache(t *testing.T) {
	t.Helper()
	if os.Getenv("TIKTOKEN_CACHE_DIR") == "" {
		t.Skip("TIKTOKEN_CACHE_DIR not set; tiktoken encodings would be downloaded")
	}
}

func TestTikToken_UnknownEncoding(t *testing.T) {
	tok, err := NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)
	assert.Nil(t, tok)

	_, err = New("invalid_encoding_xyz", "corpus")
	assert.Error(t, err)
}

func TestTikToken_Roundtrip(t *testing.T) {
	requireEncodingCache(t)

	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, 100256, tok.VocabSize())
	assert.Equal(t, "cl100k_base", tok.Name())

	for _, text := range []string{"Hello, world!", "The quick brown fox", "", "日本語"} {
		ids, err := tok.Encode(text)
		require.NoError(t, err)
		decoded, err := tok.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, text, decoded)
	}
}

func TestTikToken_Compact(t *testing.T) {
	requireEncodingCache(t)

	corpus := "the cat sat on the mat. the cat ran."
	tok, err := New("cl100k_base", corpus)
	require.NoError(t, err)

	ids, err := tok.Encode(corpus)
	require.NoError(t, err)
	for _, id := range ids {
		assert.Less(t, int(id), tok.VocabSize())
	}
	decoded, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, corpus, decoded)
}

func TestTikToken_DecodeOutOfRange(t *testing.T) {
	requireEncodingCache(t)

	tok, err := NewTikToken("r50k_base")
	require.NoError(t, err)

	_, err = tok.Decode([]int32{int32(tok.VocabSize())})
	assert.ErrorIs(t, err, ErrUnknownToken)
}
