package yolo

import (
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// PostProcess postprocesses the output of the YOLO model.
//
// Arguments:
//   - raw: The output of the YOLO model, in the model's layout.
//   - width: The width of the original image.
//   - height: The height of the original image.
//
// Returns:
//   - A slice of detections in descending confidence order.
//   - An error wrapping postprocess.ErrInvalidShape or postprocess.ErrInvalidConfig.
func (m *YOLO) PostProcess(raw postprocess.RawOutput, width, height int) ([]postprocess.Detection, error) {
	return m.postprocessor.Process(raw, width, height)
}
