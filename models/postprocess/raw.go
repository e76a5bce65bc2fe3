package postprocess

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// RawOutput is the flat output buffer of a detection model together with its layout.
//
// The buffer is not copied; it must not be modified while the RawOutput is in use.
type RawOutput struct {
	data       []float32
	layout     Layout
	candidates int
	// attributes is the declared per-candidate width, 0 when no shape was given.
	attributes int
}

// NewRawOutput wraps a flat buffer in the given layout.
//
// When shape is omitted the layout's default candidate count is assumed. A
// declared shape must be [1, 4+C, N] / [4+C, N] for LayoutTransposed or
// [1, N, 5+C] / [N, 5+C] for LayoutInterleaved, and must describe exactly
// len(data) elements. The class count itself is checked when decoding.
//
// Arguments:
//   - data: The output tensor values.
//   - layout: The layout the model was exported with.
//   - shape: Optional tensor dimensions as reported by the runtime.
//
// Returns:
//   - RawOutput: The wrapped buffer.
//   - error: ErrInvalidConfig for an unknown layout, ErrInvalidShape for a bad shape.
func NewRawOutput(data []float32, layout Layout, shape ...int64) (RawOutput, error) {
	if !layout.Valid() {
		return RawOutput{}, errors.Wrapf(ErrInvalidConfig, "unknown layout %d", int(layout))
	}

	raw := RawOutput{data: data, layout: layout, candidates: layout.DefaultCandidates()}
	if len(shape) == 0 {
		return raw, nil
	}

	dims := shape
	if len(dims) == 3 {
		if dims[0] != 1 {
			return RawOutput{}, errors.Wrapf(ErrInvalidShape, "batch size %d is not supported", dims[0])
		}
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return RawOutput{}, errors.Wrapf(ErrInvalidShape, "expected a rank 2 or 3 shape, got %v", shape)
	}
	if dims[0] <= 0 || dims[1] <= 0 {
		return RawOutput{}, errors.Wrapf(ErrInvalidShape, "non-positive dimension in %v", shape)
	}
	if dims[0]*dims[1] != int64(len(data)) {
		return RawOutput{}, errors.Wrapf(ErrInvalidShape,
			"shape %v describes %d elements, buffer has %d", shape, dims[0]*dims[1], len(data))
	}

	switch layout {
	case LayoutTransposed:
		raw.attributes, raw.candidates = int(dims[0]), int(dims[1])
	case LayoutInterleaved:
		raw.candidates, raw.attributes = int(dims[0]), int(dims[1])
	}
	return raw, nil
}

// FromDense wraps the backing data of a float32 tensor.
//
// Views are materialized first so that the flat data matches the logical shape.
func FromDense(t *tensor.Dense, layout Layout) (RawOutput, error) {
	if t == nil {
		return RawOutput{}, errors.Wrap(ErrInvalidShape, "nil tensor")
	}
	if t.Dtype() != tensor.Float32 {
		return RawOutput{}, errors.Wrapf(ErrInvalidShape, "expected float32 tensor, got %v", t.Dtype())
	}

	if t.IsView() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return RawOutput{}, errors.Wrap(ErrInvalidShape, "unable to materialize tensor view")
		}
		t = materialized
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return RawOutput{}, errors.Wrapf(ErrInvalidShape, "tensor of shape %v has no flat float32 data", t.Shape())
	}

	dims := t.Shape()
	shape := make([]int64, len(dims))
	for i, d := range dims {
		shape[i] = int64(d)
	}
	return NewRawOutput(data, layout, shape...)
}

// Layout returns the layout of the buffer.
func (r RawOutput) Layout() Layout {
	return r.layout
}

// Candidates returns the number of candidate slots N.
func (r RawOutput) Candidates() int {
	return r.candidates
}

// Len returns the number of values in the buffer.
func (r RawOutput) Len() int {
	return len(r.data)
}

// checkShape verifies the buffer holds exactly N candidates of the layout's
// attribute width for the given class count.
func (r RawOutput) checkShape(classes int) error {
	if !r.layout.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown layout %d", int(r.layout))
	}
	attrs := r.layout.Attributes(classes)
	if r.attributes != 0 && r.attributes != attrs {
		return errors.Wrapf(ErrInvalidShape,
			"%s output has %d attributes per candidate, %d classes need %d",
			r.layout, r.attributes, classes, attrs)
	}
	if want := attrs * r.candidates; r.candidates <= 0 || len(r.data) != want {
		return errors.Wrapf(ErrInvalidShape,
			"%s output with %d candidates and %d classes needs %d values, got %d",
			r.layout, r.candidates, classes, want, len(r.data))
	}
	return nil
}
