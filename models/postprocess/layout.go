package postprocess

import (
	"strings"

	"github.com/pkg/errors"
)

// Layout identifies how candidate attributes are arranged in a raw output tensor.
type Layout int

const (
	// LayoutTransposed is the attributes-major [1, 4+C, N] layout of
	// YOLOv8/YOLO11 exports: box (cx, cy, w, h) then one score per class.
	LayoutTransposed Layout = iota + 1
	// LayoutInterleaved is the candidate-major [1, N, 5+C] layout of YOLOv5
	// exports: box, objectness, then one score per class.
	LayoutInterleaved
)

const (
	// TransposedCandidates is the candidate count of a transposed export at 640x640.
	TransposedCandidates = 8400
	// InterleavedCandidates is the candidate count of an interleaved export at 640x640.
	InterleavedCandidates = 25200
)

// String returns the text form of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutTransposed:
		return "transposed"
	case LayoutInterleaved:
		return "interleaved"
	default:
		return "unknown"
	}
}

// ParseLayout parses a layout name. Model family aliases are accepted.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transposed", "yolov8", "yolo11":
		return LayoutTransposed, nil
	case "interleaved", "yolov5":
		return LayoutInterleaved, nil
	default:
		return 0, errors.Wrapf(ErrInvalidConfig, "unknown layout %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown layout %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	return l == LayoutTransposed || l == LayoutInterleaved
}

// DefaultCandidates returns the candidate count N of a 640x640 export.
func (l Layout) DefaultCandidates() int {
	return l.CandidatesFor(DefaultInputSize)
}

// CandidatesFor returns the candidate count N of an export with a square input
// of the given side. Heads at strides 8, 16 and 32 contribute one cell each per
// grid position; interleaved exports carry three anchors per cell. The side
// should be a multiple of 32, otherwise the exported shape must be given.
func (l Layout) CandidatesFor(inputSize int) int {
	if inputSize <= 0 {
		return 0
	}
	cells := 0
	for _, stride := range []int{8, 16, 32} {
		side := inputSize / stride
		cells += side * side
	}
	switch l {
	case LayoutTransposed:
		return cells
	case LayoutInterleaved:
		return 3 * cells
	default:
		return 0
	}
}

// Attributes returns the number of values per candidate for the given class count.
func (l Layout) Attributes(classes int) int {
	switch l {
	case LayoutTransposed:
		return 4 + classes
	case LayoutInterleaved:
		return 5 + classes
	default:
		return 0
	}
}
