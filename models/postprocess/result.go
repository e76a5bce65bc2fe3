// Package postprocess - Decoding and suppression of raw detection model outputs.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-detect/images"
)

// Detection is a single labeled box in the original image's pixel space.
type Detection struct {
	// The bounding box, not clamped to the image bounds.
	Box images.Box `json:"box" yaml:"box"`
	// The confidence score in [0, 1].
	Confidence float32 `json:"confidence" yaml:"confidence"`
	// The predicted class index.
	ClassIndex int `json:"class_index" yaml:"class_index"`
	// The label resolved from the label table.
	ClassName string `json:"class_name" yaml:"class_name"`
}

func (d Detection) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%.2f, %.2f) %.2fx%.2f",
		d.ClassName, d.Confidence, d.Box.Left, d.Box.Top, d.Box.Width, d.Box.Height)
}
