package backend

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Options configures the ONNX Runtime backend.
type Options struct {
	// LibraryPath is the path to the onnxruntime shared library. Empty uses
	// the platform default lookup.
	LibraryPath string
	// IntraOpThreads bounds per-inference parallelism; 0 uses the runtime
	// default.
	IntraOpThreads int
}

// Open returns an OpenFunc that loads classifier graphs with ONNX Runtime.
func Open(opts Options) OpenFunc {
	return func(modelPath string) (Session, error) {
		return newONNXSession(modelPath, opts)
	}
}

// onnxSession wraps a DynamicAdvancedSession for a text-classifier graph
// with a single int64 [batch, seq] input and a float32 [batch, classes]
// softmax output.
type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	classes    int
}

func newONNXSession(modelPath string, opts Options) (*onnxSession, error) {
	if err := initORT(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected a single input tensor, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("onnx: expected a single output tensor, got %d", len(outputs))
	}
	dims := outputs[0].Dimensions
	if len(dims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D output tensor, got %v", dims)
	}
	if dims[1] <= 0 {
		return nil, fmt.Errorf("onnx: output class dimension must be static, got %v", dims)
	}

	sopts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer sopts.Destroy()
	if opts.IntraOpThreads > 0 {
		sopts.SetIntraOpNumThreads(opts.IntraOpThreads)
	}
	sopts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		sopts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		classes:    int(dims[1]),
	}, nil
}

func (s *onnxSession) Run(inputs []int64, batch, seqLen int) ([][]float32, error) {
	if batch <= 0 || seqLen <= 0 {
		return nil, fmt.Errorf("onnx: invalid shape [%d, %d]", batch, seqLen)
	}
	if len(inputs) != batch*seqLen {
		return nil, fmt.Errorf("onnx: input length %d does not match shape [%d, %d]", len(inputs), batch, seqLen)
	}

	shape := ort.NewShape(int64(batch), int64(seqLen))
	tIn, err := ort.NewTensor(shape, inputs)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	outShape := ort.NewShape(int64(batch), int64(s.classes))
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := s.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	// Copy rows out before the tensor is destroyed.
	src := tOut.GetData()
	rows := make([][]float32, batch)
	for i := 0; i < batch; i++ {
		row := make([]float32, s.classes)
		copy(row, src[i*s.classes:(i+1)*s.classes])
		rows[i] = row
	}
	return rows, nil
}

func (s *onnxSession) OutputClasses() int { return s.classes }

func (s *onnxSession) Close() error { return s.session.Destroy() }
