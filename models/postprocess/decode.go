package postprocess

import (
	"github.com/nvr-ai/go-detect/images"
	"github.com/pkg/errors"
)

// candidate is a box that passed confidence filtering, still in input tensor space.
type candidate struct {
	cx, cy, w, h float32
	class        int
	score        float32
}

// Decode turns a raw output buffer into unsuppressed detections.
//
// The configuration is validated first. The buffer must hold exactly N
// candidates of the layout's attribute width for len(cfg.Labels) classes.
// Scores that are NaN never pass the confidence threshold.
//
// Arguments:
//   - raw: The raw model output.
//   - width: The original image width in pixels.
//   - height: The original image height in pixels.
//   - cfg: The decode configuration. cfg.Layout must match raw.Layout().
//
// Returns:
//   - []Detection: The detections in candidate order.
//   - error: ErrInvalidConfig or ErrInvalidShape. No partial results are returned.
func Decode(raw RawOutput, width, height int, cfg Config) ([]Detection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return decode(raw, width, height, cfg)
}

// decode assumes cfg has been validated.
func decode(raw RawOutput, width, height int, cfg Config) ([]Detection, error) {
	if raw.layout != cfg.Layout {
		return nil, errors.Wrapf(ErrInvalidConfig, "output layout %s does not match configured layout %s",
			raw.layout, cfg.Layout)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidShape, "image dimensions %dx%d must be positive", width, height)
	}
	if err := raw.checkShape(len(cfg.Labels)); err != nil {
		return nil, err
	}

	var candidates []candidate
	switch raw.layout {
	case LayoutTransposed:
		candidates = decodeTransposed(raw.data, raw.candidates, len(cfg.Labels), cfg.ConfidenceThreshold)
	case LayoutInterleaved:
		candidates = decodeInterleaved(raw.data, raw.candidates, len(cfg.Labels), cfg.ConfidenceThreshold)
	}

	detections := make([]Detection, 0, len(candidates))
	for _, c := range candidates {
		detections = append(detections, c.toDetection(float32(cfg.InputSize), float32(width), float32(height), cfg))
	}
	return detections, nil
}

// decodeTransposed reads the attributes-major [4+C, N] layout.
func decodeTransposed(data []float32, n, classes int, threshold float32) []candidate {
	var out []candidate
	for i := 0; i < n; i++ {
		classID := 0
		maxScore := float32(0)
		for j := 0; j < classes; j++ {
			if score := data[(4+j)*n+i]; score > maxScore {
				maxScore = score
				classID = j
			}
		}
		if !(maxScore > threshold) {
			continue
		}

		out = append(out, candidate{
			cx:    data[i],
			cy:    data[n+i],
			w:     data[2*n+i],
			h:     data[3*n+i],
			class: classID,
			score: maxScore,
		})
	}
	return out
}

// decodeInterleaved reads the candidate-major [N, 5+C] layout. Class scores
// are weighted by objectness and the threshold is checked again afterwards.
func decodeInterleaved(data []float32, n, classes int, threshold float32) []candidate {
	stride := 5 + classes

	var out []candidate
	for i := 0; i < n; i++ {
		offset := i * stride
		objectness := data[offset+4]
		if !(objectness > threshold) {
			continue
		}

		classID := 0
		maxScore := float32(0)
		for j := 0; j < classes; j++ {
			if score := data[offset+5+j] * objectness; score > maxScore {
				maxScore = score
				classID = j
			}
		}
		if !(maxScore > threshold) {
			continue
		}

		out = append(out, candidate{
			cx:    data[offset],
			cy:    data[offset+1],
			w:     data[offset+2],
			h:     data[offset+3],
			class: classID,
			score: maxScore,
		})
	}
	return out
}

// toDetection converts center form in tensor space to a corner box in image pixels.
func (c candidate) toDetection(inputSize, width, height float32, cfg Config) Detection {
	x1 := (c.cx - c.w/2) / inputSize
	y1 := (c.cy - c.h/2) / inputSize
	x2 := (c.cx + c.w/2) / inputSize
	y2 := (c.cy + c.h/2) / inputSize

	return Detection{
		Box: images.Box{
			Left:   x1 * width,
			Top:    y1 * height,
			Width:  (x2 - x1) * width,
			Height: (y2 - y1) * height,
		},
		Confidence: c.score,
		ClassIndex: c.class,
		ClassName:  cfg.ClassName(c.class),
	}
}
