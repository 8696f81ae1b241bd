// Package bundle reconstructs an in-memory, inference-ready model bundle
// from a registry entry's on-disk artifacts: the model weights, the ordered
// label list and the tokenizer configuration. A load either produces a fully
// initialized bundle or fails; nothing partial is ever returned.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"textclassd/internal/backend"
	"textclassd/internal/common/fsutil"
	"textclassd/pkg/types"
)

// Artifact file names inside a version's model directory.
const (
	ModelFile     = "model.onnx"
	LabelsFile    = "label_encoder.json"
	TokenizerFile = "vectorize_config.json"
)

// Bundle is the in-memory reconstruction of one model version, owned by
// exactly one predictor at a time. Labels[i] names output vector index i and
// the tokenizer replays the training-time vocabulary; both orderings are
// trusted verbatim from the artifacts.
type Bundle struct {
	Version   types.ModelVersion
	Session   backend.Session
	Labels    []string
	Tokenizer *Tokenizer
}

// Close releases the bundle's inference session.
func (b *Bundle) Close() error { return b.Session.Close() }

// labelEncoderFile is the serialized label encoder: the ordered class list.
type labelEncoderFile struct {
	Classes []string `json:"classes"`
}

// Loader builds bundles from registry entries. The backend open function is
// injected so the model runtime stays swappable (and fakeable in tests).
type Loader struct {
	open backend.OpenFunc
	log  zerolog.Logger
}

// NewLoader constructs a Loader.
func NewLoader(open backend.OpenFunc, log zerolog.Logger) *Loader {
	return &Loader{open: open, log: log}
}

// Load reconstructs a runnable bundle for the given version. Failure at any
// step aborts the whole load.
func (l *Loader) Load(v types.ModelVersion) (*Bundle, error) {
	dir := fsutil.NormalizePath(v.Path)
	dir, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}

	required := []string{ModelFile, LabelsFile, TokenizerFile}
	for _, name := range required {
		p := filepath.Join(dir, name)
		if !fsutil.PathExists(p) {
			l.log.Error().Str("version", v.Version).Str("artifact", name).Str("path", p).
				Msg("required artifact missing")
			return nil, artifactMissingError{name: name, path: p}
		}
	}

	labels, err := loadLabels(filepath.Join(dir, LabelsFile))
	if err != nil {
		l.log.Error().Err(err).Str("version", v.Version).Msg("label encoder unreadable")
		return nil, err
	}

	tokCfg, err := loadTokenizerConfig(filepath.Join(dir, TokenizerFile))
	if err != nil {
		l.log.Error().Err(err).Str("version", v.Version).Msg("tokenizer config unreadable")
		return nil, err
	}
	tok, err := NewTokenizer(tokCfg)
	if err != nil {
		return nil, fmt.Errorf("tokenizer for %s: %w", v.Version, err)
	}

	sess, err := l.open(filepath.Join(dir, ModelFile))
	if err != nil {
		l.log.Error().Err(err).Str("version", v.Version).Msg("model weights failed to load")
		return nil, fmt.Errorf("open model %s: %w", v.Version, err)
	}

	// The label list order is positional against the output vector. The
	// ordering itself cannot be verified, but a length mismatch can, and one
	// would silently mislabel every prediction.
	if n := sess.OutputClasses(); n > 0 && n != len(labels) {
		_ = sess.Close()
		l.log.Error().Str("version", v.Version).Int("labels", len(labels)).Int("outputs", n).
			Msg("label list does not match model output width")
		return nil, labelMismatchError{labels: len(labels), outputs: n}
	}

	l.log.Info().Str("version", v.Version).Strs("classes", labels).
		Int("seq_len", tok.SequenceLength()).Msg("bundle loaded")
	return &Bundle{Version: v, Session: sess, Labels: labels, Tokenizer: tok}, nil
}

func loadLabels(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label encoder: %w", err)
	}
	var file labelEncoderFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("decode label encoder: %w", err)
	}
	if len(file.Classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes: %s", path)
	}
	return file.Classes, nil
}

func loadTokenizerConfig(path string) (types.TokenizerConfig, error) {
	var cfg types.TokenizerConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tokenizer config: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("decode tokenizer config: %w", err)
	}
	return cfg, nil
}
