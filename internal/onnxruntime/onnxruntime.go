// Package onnxruntime wraps a loaded ONNX regression model behind
// oracle.Model's single-sample Predict contract. Grounded on
// original_source/src/models/onnx_predictor.cpp's load/predict shape
// (Ort::Session created once, Run() called once per incident); the actual
// inference call is delegated to github.com/yalue/onnxruntime_go, the one
// published Go binding for the onnxruntime C API (not present in any pack
// repo — named directly, per DESIGN.md, since no example wraps ONNX in Go).
package onnxruntime

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Predictor loads one ONNX regression model and exposes it as a
// single-sample float64 predictor, satisfying sim/oracle.Model.
type Predictor struct {
	session     *ort.AdvancedSession
	inputShape  ort.Shape
	inputTensor *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// Load initializes the ONNX runtime environment (once per process) and
// opens the model at modelPath, mirroring
// ONNXPredictor::ONNXPredictor/loadModel's env+session setup.
func Load(modelPath string, featureCount int) (*Predictor, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("onnxruntime: initializing environment: %w", err)
	}

	inputShape := ort.NewShape(1, int64(featureCount))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("onnxruntime: allocating input tensor: %w", err)
	}
	outputShape := ort.NewShape(1, 1)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("onnxruntime: allocating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}, nil)
	if err != nil {
		return nil, fmt.Errorf("onnxruntime: loading model %s: %w", modelPath, err)
	}

	return &Predictor{session: session, inputShape: inputShape, inputTensor: inputTensor, outputTensor: outputTensor}, nil
}

// Predict runs the model on one feature vector and returns its single
// scalar output, mirroring ONNXPredictor::predict's CreateTensor/Run/
// GetTensorMutableData flow. Returns an error rather than the original's
// -1.0f sentinel; the ML oracle (sim/oracle.ML) converts that error into a
// neutral prior (spec.md §7 "external failures... ignored at run").
func (p *Predictor) Predict(features []float64) (float64, error) {
	data := p.inputTensor.GetData()
	if len(data) != len(features) {
		return 0, fmt.Errorf("onnxruntime: expected %d features, got %d", len(data), len(features))
	}
	for i, f := range features {
		data[i] = float32(f)
	}
	if err := p.session.Run(); err != nil {
		return 0, fmt.Errorf("onnxruntime: inference failed: %w", err)
	}
	out := p.outputTensor.GetData()
	if len(out) == 0 {
		return 0, fmt.Errorf("onnxruntime: empty output tensor")
	}
	return float64(out[0]), nil
}

// Close releases the session and tensors.
func (p *Predictor) Close() error {
	if err := p.inputTensor.Destroy(); err != nil {
		return err
	}
	if err := p.outputTensor.Destroy(); err != nil {
		return err
	}
	return p.session.Destroy()
}
