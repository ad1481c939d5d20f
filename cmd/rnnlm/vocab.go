package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zbxzc35/RNN-Experiments/internal/tokenizer"
)

// Checkpoint metadata keys describing the tokenizer.
const (
	metaTokenizer = "tokenizer"
	metaVocab     = "tokenizer_vocab"
)

// readCorpus loads a UTF-8 text file.
func readCorpus(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("-corpus is required")
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read corpus: %w", err)
	}
	return string(text), nil
}

// tokenizerMetadata records enough of tok to rebuild it with
// tokenizerFromMetadata.
func tokenizerMetadata(tok tokenizer.Tokenizer) (map[string]string, error) {
	meta := map[string]string{metaTokenizer: tok.Name()}
	switch t := tok.(type) {
	case *tokenizer.Char:
		meta[metaVocab] = t.Vocab()
	case *tokenizer.Compact:
		ids, err := json.Marshal(t.BaseIDs())
		if err != nil {
			return nil, err
		}
		meta[metaVocab] = string(ids)
	default:
		return nil, fmt.Errorf("tokenizer %s cannot be saved", tok.Name())
	}
	return meta, nil
}

func tokenizerFromMetadata(meta map[string]string) (tokenizer.Tokenizer, error) {
	kind, vocab := meta[metaTokenizer], meta[metaVocab]
	if kind == "char" {
		return tokenizer.NewCharFromVocab(vocab), nil
	}
	base, err := tokenizer.NewTikToken(kind)
	if err != nil {
		return nil, err
	}
	var ids []int32
	if err := json.Unmarshal([]byte(vocab), &ids); err != nil {
		return nil, fmt.Errorf("checkpoint vocabulary: %w", err)
	}
	return tokenizer.NewCompactFromIDs(base, ids), nil
}
