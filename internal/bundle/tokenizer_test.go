package bundle

import (
	"reflect"
	"testing"

	"textclassd/pkg/types"
)

func testConfig(vocab []string, seqLen int) types.TokenizerConfig {
	return types.TokenizerConfig{
		MaxTokens:            10000,
		OutputMode:           "int",
		OutputSequenceLength: seqLen,
		Vocabulary:           vocab,
	}
}

func TestTokenizerEncodePositional(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "hello", "world"}, 4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("hello world")
	want := []int64{2, 3, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestTokenizerOOVMapsToIndexOne(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "hello"}, 3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("hello martian")
	want := []int64{2, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestTokenizerTruncates(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "a", "b", "c"}, 2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("a b c")
	want := []int64{2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestTokenizerLowercaseAndPunctuation(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "hello", "world"}, 4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("Hello, World!")
	want := []int64{2, 3, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestTokenizerCJKSplitsPerIdeograph(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "天", "气"}, 4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("天气")
	want := []int64{2, 3, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestTokenizerStripsAccents(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "cafe"}, 2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.Encode("café")
	if got[0] != 2 {
		t.Fatalf("expected accent-stripped lookup, got %v", got)
	}
}

func TestTokenizerDeterministic(t *testing.T) {
	cfg := testConfig([]string{"", "[UNK]", "machine", "learning", "is", "fun"}, 8)
	a, err := NewTokenizer(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := NewTokenizer(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text := "Machine learning is fun, fun, FUN"
	if !reflect.DeepEqual(a.Encode(text), b.Encode(text)) {
		t.Fatalf("two tokenizers from the same config disagree")
	}
}

func TestTokenizerEncodeBatchFlat(t *testing.T) {
	tok, err := NewTokenizer(testConfig([]string{"", "[UNK]", "a", "b"}, 2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := tok.EncodeBatch([]string{"a", "b"})
	want := []int64{2, 0, 3, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EncodeBatch = %v, want %v", got, want)
	}
}

func TestNewTokenizerRejectsBadConfig(t *testing.T) {
	cases := []types.TokenizerConfig{
		{OutputMode: "binary", OutputSequenceLength: 4, Vocabulary: []string{"", "[UNK]"}},
		{OutputMode: "int", OutputSequenceLength: 0, Vocabulary: []string{"", "[UNK]"}},
		{OutputMode: "int", OutputSequenceLength: 4, Vocabulary: []string{""}},
		{OutputMode: "int", OutputSequenceLength: 4, Vocabulary: []string{"", "[UNK]", "dup", "dup"}},
	}
	for i, cfg := range cases {
		if _, err := NewTokenizer(cfg); err == nil {
			t.Fatalf("case %d: expected error for config %+v", i, cfg)
		}
	}
}
