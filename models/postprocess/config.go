package postprocess

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// DefaultIoUThreshold is the suppression overlap threshold.
	DefaultIoUThreshold = 0.4
	// DefaultInputSize is the side length of the square model input.
	DefaultInputSize = 640
	// DefaultTransposedConfidence is the confidence threshold seeded for LayoutTransposed models.
	DefaultTransposedConfidence = 0.3
	// DefaultInterleavedConfidence is the confidence threshold seeded for LayoutInterleaved models.
	DefaultInterleavedConfidence = 0.5
)

// UnknownClassName is reported for class indices with no entry in the label table.
const UnknownClassName = "unknown"

// Config holds the decode and suppression parameters of one pipeline.
type Config struct {
	// Layout is the tensor layout of the model output. It is never inferred.
	Layout Layout `json:"layout" yaml:"layout"`
	// ConfidenceThreshold keeps candidates whose score is strictly greater.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// IoUThreshold suppresses candidates whose overlap is strictly greater.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// InputSize is the side length of the square input tensor.
	InputSize int `json:"input_size" yaml:"input_size"`
	// PerClassSuppression restricts suppression to boxes of the same class.
	PerClassSuppression bool `json:"per_class_suppression" yaml:"per_class_suppression"`
	// Labels is the ordered label table; its length is the class count C.
	Labels []string `json:"labels" yaml:"labels"`
}

// DefaultConfig returns the defaults for a layout. Labels are left empty and
// must be supplied by the caller.
func DefaultConfig(layout Layout) Config {
	confidence := float32(DefaultTransposedConfidence)
	if layout == LayoutInterleaved {
		confidence = DefaultInterleavedConfidence
	}
	return Config{
		Layout:              layout,
		ConfidenceThreshold: confidence,
		IoUThreshold:        DefaultIoUThreshold,
		InputSize:           DefaultInputSize,
	}
}

// Validate reports every problem with the configuration at once.
//
// Each reported error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var err error
	if !c.Layout.Valid() {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "unknown layout %d", int(c.Layout)))
	}
	if !inUnitInterval(c.ConfidenceThreshold) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig,
			"confidence threshold %v is outside [0, 1]", c.ConfidenceThreshold))
	}
	if !inUnitInterval(c.IoUThreshold) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig,
			"iou threshold %v is outside [0, 1]", c.IoUThreshold))
	}
	if c.InputSize <= 0 {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "input size %d must be positive", c.InputSize))
	}
	if len(c.Labels) == 0 {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "label table is empty"))
	}
	return err
}

// ClassName resolves a class index against the label table.
func (c Config) ClassName(idx int) string {
	if idx < 0 || idx >= len(c.Labels) {
		return UnknownClassName
	}
	return c.Labels[idx]
}

// NMS returns the suppression settings derived from the configuration.
func (c Config) NMS() *NMSConfig {
	return &NMSConfig{
		IoUThreshold: c.IoUThreshold,
		ClassAware:   c.PerClassSuppression,
	}
}

func inUnitInterval(v float32) bool {
	return v >= 0 && v <= 1
}
