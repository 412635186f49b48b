package onnx

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/setusign/signgo/internal/pkg/model"
)

// Settings of the onnx model
type Settings struct {
	Library     string
	Input       string
	Output      string
	InputShape  []int64
	OutputShape []int64
}

type runner interface {
	Run() error
}

// Session runs the onnx model in process.
// Tensors are preallocated, so calls are serialized
type Session struct {
	lock         sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	features     int

	// run fills output from input
	run    runner
	input  []float32
	output []float32
}

// NewSession loads the model file
func NewSession(modelPath string, s Settings) (*Session, error) {
	features, err := validate(s)
	if err != nil {
		return nil, err
	}
	if s.Library != "" {
		ort.SetSharedLibraryPath(s.Library)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "Failed to initialize ONNX environment")
	}
	res := &Session{features: features}
	res.inputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.InputShape...))
	if err != nil {
		res.Close()
		return nil, errors.Wrap(err, "Failed to create input tensor")
	}
	res.outputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.OutputShape...))
	if err != nil {
		res.Close()
		return nil, errors.Wrap(err, "Failed to create output tensor")
	}
	res.session, err = ort.NewAdvancedSession(modelPath,
		[]string{s.Input}, []string{s.Output},
		[]ort.ArbitraryTensor{res.inputTensor}, []ort.ArbitraryTensor{res.outputTensor},
		nil)
	if err != nil {
		res.Close()
		return nil, errors.Wrapf(err, "Failed to create ONNX session from %s", modelPath)
	}
	res.run, res.input, res.output = res.session, res.inputTensor.GetData(), res.outputTensor.GetData()
	return res, nil
}

func validate(s Settings) (int, error) {
	if s.Input == "" || s.Output == "" {
		return 0, errors.New("No onnx input/output names")
	}
	features, err := batchOfOne(s.InputShape)
	if err != nil {
		return 0, errors.Wrap(err, "Wrong input shape")
	}
	if _, err := batchOfOne(s.OutputShape); err != nil {
		return 0, errors.Wrap(err, "Wrong output shape")
	}
	return features, nil
}

// batchOfOne checks shape is (1, d1, ...) and returns d1*...
func batchOfOne(shape []int64) (int, error) {
	if len(shape) < 2 {
		return 0, errors.Errorf("Expected at least 2 dimensions, got %v", shape)
	}
	if shape[0] != 1 {
		return 0, errors.Errorf("Expected batch size 1, got %v", shape)
	}
	res := 1
	for _, d := range shape[1:] {
		if d <= 0 {
			return 0, errors.Errorf("Wrong dimension in %v", shape)
		}
		res *= int(d)
	}
	return res, nil
}

// Predict runs the model and returns arg-max over the output scores
func (s *Session) Predict(ctx context.Context, features []float32) (int, error) {
	if err := model.CheckLen(features, s.features); err != nil {
		return 0, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	copy(s.input, features)
	if err := s.run.Run(); err != nil {
		return 0, errors.Wrap(err, "Inference failed")
	}
	res := model.ArgMax(s.output)
	if res < 0 {
		return 0, errors.New("No scores in onnx result")
	}
	return res, nil
}

// Close releases onnx resources
func (s *Session) Close() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	ort.DestroyEnvironment()
}
