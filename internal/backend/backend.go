// Package backend abstracts the numerical framework that executes trained
// model graphs. The rest of the system treats a loaded model as an opaque
// inference-capable handle; the concrete implementation here is ONNX Runtime.
package backend

// Session is a loaded, inference-capable model graph.
type Session interface {
	// Run executes one forward pass. inputs is a flat [batch*seqLen] slice of
	// token ids; the result holds one probability row per batch element, in
	// batch order.
	Run(inputs []int64, batch, seqLen int) ([][]float32, error)
	// OutputClasses reports the width of the model's output vector, or 0 when
	// the graph does not declare it statically.
	OutputClasses() int
	// Close releases resources associated with the session.
	Close() error
}

// OpenFunc opens a model-weights file into a Session. Injected into the
// bundle loader so tests can substitute a deterministic fake.
type OpenFunc func(modelPath string) (Session, error)
