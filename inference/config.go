package inference

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ErrInvalidSession is returned for unusable session configuration.
var ErrInvalidSession = errors.New("invalid session config")

// SessionConfig describes an onnxruntime session with fixed input and output tensors.
type SessionConfig struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// SharedLibPath is the onnxruntime shared library.
	SharedLibPath string `json:"shared_lib_path" yaml:"shared_lib_path"`
	// InputName and OutputName are the graph tensor names.
	InputName  string `json:"input_name" yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
	// InputShape is the input tensor shape, typically [1, 3, 640, 640].
	InputShape []int64 `json:"input_shape" yaml:"input_shape"`
	// OutputShape is the output tensor shape, [1, 84, 8400] or [1, 25200, 85].
	OutputShape []int64 `json:"output_shape" yaml:"output_shape"`
	// Sets the number of threads used to parallelize execution within graph nodes. 0 uses the default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// Sets the number of threads used to parallelize execution across graph nodes. 0 uses the default.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
}

// DefaultSessionConfig returns the session layout of a 640x640 YOLOv8 export.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SharedLibPath:  DefaultSharedLibPath(),
		InputName:      "images",
		OutputName:     "output0",
		InputShape:     []int64{1, 3, 640, 640},
		OutputShape:    []int64{1, 84, 8400},
		IntraOpThreads: 4,
		InterOpThreads: 2,
	}
}

// Validate reports every problem with the configuration at once.
func (c SessionConfig) Validate() error {
	var err error
	if c.ModelPath == "" {
		err = multierr.Append(err, errors.Wrap(ErrInvalidSession, "model path is required"))
	}
	if c.SharedLibPath == "" {
		err = multierr.Append(err, errors.Wrap(ErrInvalidSession, "shared library path is required"))
	}
	if c.InputName == "" || c.OutputName == "" {
		err = multierr.Append(err, errors.Wrap(ErrInvalidSession, "input and output names are required"))
	}
	if !validShape(c.InputShape) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidSession, "invalid input shape %v", c.InputShape))
	}
	if !validShape(c.OutputShape) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidSession, "invalid output shape %v", c.OutputShape))
	}
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		err = multierr.Append(err, errors.Wrap(ErrInvalidSession, "thread counts must not be negative"))
	}
	return err
}

// InputSize returns the number of elements of the input tensor.
func (c SessionConfig) InputSize() int {
	return elements(c.InputShape)
}

func validShape(shape []int64) bool {
	if len(shape) == 0 {
		return false
	}
	for _, d := range shape {
		if d <= 0 {
			return false
		}
	}
	return true
}

func elements(shape []int64) int {
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}
