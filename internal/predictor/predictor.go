// Package predictor owns the single active model bundle and serves inference
// against it. Bundle replacement is an atomic pointer swap, never an
// in-place mutation: an in-flight predict pins the bundle it captured
// through a reference count, and a superseded bundle's session is closed
// only after its last user releases it.
package predictor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"textclassd/internal/bundle"
	"textclassd/internal/registry"
	"textclassd/pkg/types"
)

// defaultWorkers bounds concurrent forward passes when unset. Inference is
// CPU-bound blocking work; capping it keeps load/info/health responsive
// behind a queue of long inferences.
const defaultWorkers = 4

// Config holds predictor tunables.
type Config struct {
	// Workers is the maximum number of concurrent forward passes.
	Workers int
}

// Predictor serves single and batch inference against at most one active
// bundle and controls load/unload/swap. It is an explicitly constructed
// service object; there is no package-level instance.
type Predictor struct {
	reg    *registry.Registry
	loader *bundle.Loader
	log    zerolog.Logger

	active  atomic.Pointer[bundleRef]
	workers chan struct{}
}

// New constructs a Predictor in the Unloaded state.
func New(reg *registry.Registry, loader *bundle.Loader, log zerolog.Logger, cfg Config) *Predictor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Predictor{
		reg:     reg,
		loader:  loader,
		log:     log,
		workers: make(chan struct{}, workers),
	}
}

// bundleRef pairs a bundle with a pin count. The count starts at 1 for the
// active slot itself; each in-flight user adds one. The session closes when
// the count reaches zero, and zero is terminal: a reader that observes zero
// retries against the current active pointer instead of resurrecting a
// closed bundle.
type bundleRef struct {
	b    *bundle.Bundle
	refs atomic.Int64
}

func newBundleRef(b *bundle.Bundle) *bundleRef {
	r := &bundleRef{b: b}
	r.refs.Store(1)
	return r
}

func (r *bundleRef) pin() bool {
	for {
		n := r.refs.Load()
		if n == 0 {
			return false
		}
		if r.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (r *bundleRef) release() {
	if r.refs.Add(-1) == 0 {
		_ = r.b.Close()
	}
}

// acquire pins the current active bundle for the duration of one call.
func (p *Predictor) acquire() (*bundleRef, error) {
	for {
		ref := p.active.Load()
		if ref == nil {
			return nil, notLoadedError{}
		}
		if ref.pin() {
			return ref, nil
		}
		// Lost the race with a swap that dropped the last reference; the
		// active pointer has already moved on.
	}
}

// LoadBest loads the highest-accuracy registry version and installs it.
func (p *Predictor) LoadBest(ctx context.Context) (types.ModelVersion, error) {
	v, err := p.reg.Best()
	if err != nil {
		return types.ModelVersion{}, err
	}
	return v, p.load(ctx, v)
}

// LoadVersion loads the named registry version and installs it.
func (p *Predictor) LoadVersion(ctx context.Context, id string) (types.ModelVersion, error) {
	v, err := p.reg.Get(id)
	if err != nil {
		return types.ModelVersion{}, err
	}
	return v, p.load(ctx, v)
}

// Load resolves version selection for callers: an empty id means best.
func (p *Predictor) Load(ctx context.Context, id string) (types.ModelVersion, error) {
	if id == "" {
		return p.LoadBest(ctx)
	}
	return p.LoadVersion(ctx, id)
}

func (p *Predictor) load(ctx context.Context, v types.ModelVersion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := p.loader.Load(v)
	if err != nil {
		// Nothing is installed on failure; any previous bundle stays active.
		loadFailuresTotal.Inc()
		p.log.Error().Err(err).Str("version", v.Version).Msg("model load failed")
		return err
	}
	p.install(newBundleRef(b))
	loadsTotal.Inc()
	p.log.Info().Str("version", v.Version).Float64("val_accuracy", v.ValAccuracy).
		Msg("model installed")
	return nil
}

func (p *Predictor) install(ref *bundleRef) {
	if old := p.active.Swap(ref); old != nil {
		old.release()
	}
}

// Unload releases the active bundle. Subsequent predicts fail until a new
// load succeeds. Unloading an unloaded predictor is a no-op.
func (p *Predictor) Unload() {
	if old := p.active.Swap(nil); old != nil {
		old.release()
		unloadsTotal.Inc()
		p.log.Info().Str("version", old.b.Version.Version).Msg("model unloaded")
	}
}

// Close releases the active bundle on shutdown. In-flight calls finish
// against the bundle they pinned.
func (p *Predictor) Close() error {
	p.Unload()
	return nil
}

// Ready reports whether a bundle is installed.
func (p *Predictor) Ready() bool { return p.active.Load() != nil }

// Models returns the registry's ordered version list.
func (p *Predictor) Models() []types.ModelVersion { return p.reg.List() }

// LatestVersion returns the registry's latest-appended identifier.
func (p *Predictor) LatestVersion() string { return p.reg.Latest() }

// Info reports load status and, if loaded, the active bundle's label set and
// tokenizer dimensions.
func (p *Predictor) Info() types.ModelInfo {
	ref := p.active.Load()
	if ref == nil || !ref.pin() {
		return types.ModelInfo{Status: "not_loaded"}
	}
	defer ref.release()
	b := ref.b
	labels := make([]string, len(b.Labels))
	copy(labels, b.Labels)
	return types.ModelInfo{
		Status:            "loaded",
		Version:           b.Version.Version,
		Classes:           labels,
		NumClasses:        len(b.Labels),
		VocabSize:         b.Tokenizer.MaxTokens(),
		MaxSequenceLength: b.Tokenizer.SequenceLength(),
	}
}

// Predict classifies one text with the active bundle.
func (p *Predictor) Predict(ctx context.Context, text string) (types.PredictResponse, error) {
	ref, err := p.acquire()
	if err != nil {
		return types.PredictResponse{}, err
	}
	defer ref.release()
	b := ref.b

	start := time.Now()
	if !utf8.ValidString(text) {
		predictionsTotal.WithLabelValues("single", "error").Inc()
		return types.PredictResponse{}, tokenizationError{msg: "text is not valid UTF-8"}
	}
	ids := b.Tokenizer.Encode(text)

	release, err := p.beginInference(ctx)
	if err != nil {
		return types.PredictResponse{}, err
	}
	rows, err := b.Session.Run(ids, 1, b.Tokenizer.SequenceLength())
	release()
	if err != nil {
		predictionsTotal.WithLabelValues("single", "error").Inc()
		return types.PredictResponse{}, inferenceError{err: err}
	}

	res, err := assemble(text, rows[0], b.Labels)
	if err != nil {
		predictionsTotal.WithLabelValues("single", "error").Inc()
		return types.PredictResponse{}, err
	}
	elapsed := time.Since(start)
	predictionsTotal.WithLabelValues("single", "ok").Inc()
	predictionDuration.WithLabelValues("single").Observe(elapsed.Seconds())
	return types.PredictResponse{
		Text:               res.Text,
		PredictedClass:     res.PredictedClass,
		Confidence:         res.Confidence,
		ClassProbabilities: res.ClassProbabilities,
		ProcessingTime:     elapsed.Seconds(),
	}, nil
}

// PredictBatch classifies texts in one batched forward pass and returns one
// result per input text, in input order. Batch-size ceilings are the
// caller's concern; the predictor places none.
func (p *Predictor) PredictBatch(ctx context.Context, texts []string) (types.BatchPredictResponse, error) {
	ref, err := p.acquire()
	if err != nil {
		return types.BatchPredictResponse{}, err
	}
	defer ref.release()
	b := ref.b

	start := time.Now()
	// Validate every input before any inference runs.
	for i, text := range texts {
		if !utf8.ValidString(text) {
			predictionsTotal.WithLabelValues("batch", "error").Inc()
			return types.BatchPredictResponse{}, tokenizationError{msg: fmt.Sprintf("text %d is not valid UTF-8", i)}
		}
	}

	results := make([]types.BatchResult, 0, len(texts))
	if len(texts) > 0 {
		ids := b.Tokenizer.EncodeBatch(texts)

		release, err := p.beginInference(ctx)
		if err != nil {
			return types.BatchPredictResponse{}, err
		}
		rows, err := b.Session.Run(ids, len(texts), b.Tokenizer.SequenceLength())
		release()
		if err != nil {
			predictionsTotal.WithLabelValues("batch", "error").Inc()
			return types.BatchPredictResponse{}, inferenceError{err: err}
		}
		if len(rows) != len(texts) {
			predictionsTotal.WithLabelValues("batch", "error").Inc()
			return types.BatchPredictResponse{}, inferenceError{err: errRowCount(len(rows), len(texts))}
		}

		for i, text := range texts {
			res, err := assemble(text, rows[i], b.Labels)
			if err != nil {
				predictionsTotal.WithLabelValues("batch", "error").Inc()
				return types.BatchPredictResponse{}, err
			}
			results = append(results, res)
		}
	}

	elapsed := time.Since(start)
	predictionsTotal.WithLabelValues("batch", "ok").Inc()
	predictionDuration.WithLabelValues("batch").Observe(elapsed.Seconds())
	batchTexts.Observe(float64(len(texts)))
	return types.BatchPredictResponse{
		Results:        results,
		TotalTexts:     len(texts),
		ProcessingTime: elapsed.Seconds(),
	}, nil
}

// beginInference reserves a bounded worker slot for one forward pass.
func (p *Predictor) beginInference(ctx context.Context) (func(), error) {
	select {
	case p.workers <- struct{}{}:
		return func() { <-p.workers }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// assemble maps one probability row to a result. The label list order equals
// the output vector order by construction of the artifacts.
func assemble(text string, row []float32, labels []string) (types.BatchResult, error) {
	if len(row) != len(labels) {
		return types.BatchResult{}, inferenceError{err: errWidth(len(row), len(labels))}
	}
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	probs := make(map[string]float64, len(labels))
	for i, label := range labels {
		probs[label] = float64(row[i])
	}
	return types.BatchResult{
		Text:               text,
		PredictedClass:     labels[best],
		Confidence:         float64(row[best]),
		ClassProbabilities: probs,
	}, nil
}
