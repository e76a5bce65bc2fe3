package postprocess

import "github.com/pkg/errors"

var (
	// ErrInvalidShape is returned when a raw output buffer, its declared shape,
	// or the original image dimensions do not match what the layout requires.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrInvalidConfig is returned when thresholds, the input size, or the
	// label table are unusable.
	ErrInvalidConfig = errors.New("invalid config")
)
