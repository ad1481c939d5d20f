// Package tokenizer turns a text corpus into the integer ids the language
// model reads.
//
// Two strategies are provided:
//   - Char: one id per distinct rune of the corpus (character-level models)
//   - TikToken: BPE via pkoukk/tiktoken-go (cl100k_base, p50k_base, ...)
//
// BPE vocabularies have ~100k entries, most of them unused by a given
// corpus. Compact renumbers the ids a corpus actually uses into a dense
// range, so the embedding and output layers only cover those:
//
//	base, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tok, err := tokenizer.NewCompact(base, corpus)
//	ids, err := tok.Encode(corpus) // ids in [0, tok.VocabSize())
package tokenizer
