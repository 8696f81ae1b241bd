package types

// ModelVersion is one trained-model record in the registry catalog. The JSON
// field names match the registry.json format written by the trainer, so a
// registry produced by any trainer release can be served unchanged.
type ModelVersion struct {
	// Unique identifier, monotonic by creation timestamp.
	// example: v20250812_143055
	Version string `json:"model_version" example:"v20250812_143055"`
	// Directory containing this version's artifact files.
	// example: models/registry/v20250812_143055
	Path string `json:"model_path" example:"models/registry/v20250812_143055"`
	// Validation accuracy measured at training time.
	// example: 0.92
	ValAccuracy float64 `json:"val_accuracy" example:"0.92"`
	// Vocabulary size the tokenizer was fitted with.
	// example: 10000
	VocabSize int `json:"vocab_size" example:"10000"`
	// Number of output classes.
	// example: 3
	NumClasses int `json:"num_classes" example:"3"`
	// Ordered class labels; position i corresponds to output vector index i.
	Classes []string `json:"classes"`
	// Fixed token-sequence length used at training time.
	// example: 128
	MaxSequenceLength int `json:"max_sequence_length" example:"128"`
	// Opaque training configuration recorded by the trainer.
	TrainingConfig map[string]any `json:"training_config,omitempty"`
	// Creation timestamp, ISO-8601, preserved verbatim.
	// example: 2025-08-12T14:30:55.123456
	CreatedAt string `json:"created_at" example:"2025-08-12T14:30:55.123456"`
	// Free-form status tag. Advisory only; selection ignores it.
	// example: active
	Status string `json:"status" example:"active"`
}

// RegistryFile is the on-disk shape of the registry catalog.
type RegistryFile struct {
	// Model records, sorted by val_accuracy descending.
	Models []ModelVersion `json:"models"`
	// Identifier of the most recently appended version.
	Latest string `json:"latest"`
}

// TokenizerConfig mirrors the vectorize_config.json artifact persisted at
// training time. The vocabulary order defines the token-to-index mapping and
// is replayed verbatim at inference time, never re-derived.
type TokenizerConfig struct {
	// Upper bound on vocabulary size fixed at training time.
	// example: 10000
	MaxTokens int `json:"max_tokens" example:"10000"`
	// Vectorization output mode; only "int" is supported.
	// example: int
	OutputMode string `json:"output_mode" example:"int"`
	// Fixed length of the encoded integer sequence.
	// example: 128
	OutputSequenceLength int `json:"output_sequence_length" example:"128"`
	// Ordered vocabulary; a token's index is its position in this list.
	Vocabulary []string `json:"vocabulary"`
}
