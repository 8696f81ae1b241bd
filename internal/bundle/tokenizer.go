package bundle

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"textclassd/pkg/types"
)

// oovIndex is the vocabulary position reserved for out-of-vocabulary tokens;
// position 0 is padding. Both are fixed by the training-time vectorizer.
const oovIndex = 1

// Tokenizer converts text into the fixed-length integer sequence the model
// was trained on. It is built deterministically from the persisted
// vocabulary: a token's id is its position in that list, so encoding is
// reproducible byte-for-byte across process restarts.
type Tokenizer struct {
	index     map[string]int64
	seqLen    int
	maxTokens int
	vocabSize int
}

// NewTokenizer builds a Tokenizer from a persisted configuration. The
// vocabulary is trusted verbatim; nothing is re-fitted.
func NewTokenizer(cfg types.TokenizerConfig) (*Tokenizer, error) {
	if cfg.OutputMode != "int" {
		return nil, fmt.Errorf("unsupported tokenizer output mode %q", cfg.OutputMode)
	}
	if cfg.OutputSequenceLength <= 0 {
		return nil, fmt.Errorf("invalid output sequence length %d", cfg.OutputSequenceLength)
	}
	if len(cfg.Vocabulary) < 2 {
		return nil, fmt.Errorf("vocabulary too small: %d entries", len(cfg.Vocabulary))
	}
	index := make(map[string]int64, len(cfg.Vocabulary))
	for i, tok := range cfg.Vocabulary {
		if _, seen := index[tok]; seen && tok != "" {
			return nil, fmt.Errorf("vocabulary entry %q repeated at position %d", tok, i)
		}
		index[tok] = int64(i)
	}
	return &Tokenizer{
		index:     index,
		seqLen:    cfg.OutputSequenceLength,
		maxTokens: cfg.MaxTokens,
		vocabSize: len(cfg.Vocabulary),
	}, nil
}

// Encode converts one text into a sequence of exactly SequenceLength ids,
// truncated or zero-padded on the right.
func (t *Tokenizer) Encode(text string) []int64 {
	ids := make([]int64, t.seqLen)
	pos := 0
	for _, tok := range t.split(text) {
		if pos >= t.seqLen {
			break
		}
		if id, ok := t.index[tok]; ok {
			ids[pos] = id
		} else {
			ids[pos] = oovIndex
		}
		pos++
	}
	return ids
}

// EncodeBatch encodes texts into one flat [len(texts)*SequenceLength] slice
// suitable for a single batched forward pass.
func (t *Tokenizer) EncodeBatch(texts []string) []int64 {
	out := make([]int64, 0, len(texts)*t.seqLen)
	for _, text := range texts {
		out = append(out, t.Encode(text)...)
	}
	return out
}

// SequenceLength returns the fixed encoded length.
func (t *Tokenizer) SequenceLength() int { return t.seqLen }

// MaxTokens returns the vocabulary-size bound fixed at training time.
func (t *Tokenizer) MaxTokens() int { return t.maxTokens }

// VocabSize returns the number of vocabulary entries actually persisted.
func (t *Tokenizer) VocabSize() int { return t.vocabSize }

// split standardizes and tokenizes: lowercase, strip combining accents,
// space out CJK ideographs so each is its own token, drop punctuation, then
// split on whitespace. Mirrors the training-time standardization.
func (t *Tokenizer) split(text string) []string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range norm.NFD.String(strings.ToLower(text)) {
		switch {
		case unicode.In(r, unicode.Mn):
			// combining mark from NFD decomposition
		case isCJK(r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		case isPunctuation(r):
			// stripped, not split on
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// isPunctuation matches ASCII punctuation ranges plus Unicode punctuation
// categories.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// isCJK matches CJK Unified Ideographs and extension ranges.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
