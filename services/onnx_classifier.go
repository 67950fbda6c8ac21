package services

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxClassifier runs the exported food model in-process with ONNX Runtime.
type OnnxClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	classes ClassIndex
}

type OnnxOptions struct {
	LibraryPath string
	ModelPath   string
	InputName   string
	OutputName  string
}

func NewOnnxClassifier(opts OnnxOptions, classes ClassIndex) (*OnnxClassifier, error) {
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(TensorShape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes.Size())))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to allocate output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{opts.InputName}, []string{opts.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to load model %s: %w", opts.ModelPath, err)
	}

	return &OnnxClassifier{session: session, input: input, output: output, classes: classes}, nil
}

func (o *OnnxClassifier) Classify(ctx context.Context, img *DecodedImage) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	pixels := ToTensor(img.Image)

	// the session is bound to one pair of tensors
	o.mu.Lock()
	defer o.mu.Unlock()

	copy(o.input.GetData(), pixels)
	if err := o.session.Run(); err != nil {
		return Prediction{}, fmt.Errorf("model inference failed: %w", err)
	}
	logits := make([]float32, len(o.output.GetData()))
	copy(logits, o.output.GetData())
	return PredictFromLogits(logits, o.classes)
}

func (o *OnnxClassifier) NumClasses() int { return len(o.classes) }
func (o *OnnxClassifier) Device() string  { return "cpu" }
func (o *OnnxClassifier) Name() string    { return "onnx" }

func (o *OnnxClassifier) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var firstErr error
	for _, destroy := range []func() error{o.session.Destroy, o.input.Destroy, o.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := ort.DestroyEnvironment(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
