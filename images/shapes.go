// Package images - Geometry for detections in image pixel space.
package images

import "github.com/chewxy/math32"

// Box is an axis-aligned bounding box given by its top-left corner and size.
//
// Coordinates are floating point and are not clamped to the image bounds, so
// a box near an edge may have a negative Left/Top or extend past the image.
type Box struct {
	Left   float32 `json:"left" yaml:"left"`
	Top    float32 `json:"top" yaml:"top"`
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float32 {
	return b.Left + b.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float32 {
	return b.Top + b.Height
}

// Area returns the area of the box.
//
// The extent is measured edge to edge (Right-Left, Bottom-Top) so that it
// agrees exactly with the intersection computed by CalculateIoU.
func (b Box) Area() float32 {
	return (b.Right() - b.Left) * (b.Bottom() - b.Top)
}

// CalculateIoU (Intersection over Union) measures how much two boxes overlap.
//
//	IoU = Area of Intersection / Area of Union
//
//	- 1.0 means the boxes are identical.
//	- 0.0 means the boxes don't overlap at all (touching edges included).
//
// **1. Intersection**
//
//	The top-left corner of the overlap is the maximum of the two top-left
//	corners, the bottom-right corner is the minimum of the two bottom-right
//	corners. A zero or negative overlap width/height means no overlap. NaN
//	coordinates fail the positive-size check and are treated the same way.
//
// **2. Union**
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
//	A non-positive union returns 0 instead of dividing by zero.
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value in [0.0, 1.0]. The function is symmetric in its arguments.
//
// Example Usage:
// ```go
//
//	a := Box{Left: 0, Top: 0, Width: 100, Height: 100}
//	b := Box{Left: 50, Top: 50, Width: 100, Height: 100}
//
//	iou := CalculateIoU(a, b) // intersection=2500, union=17500, iou≈0.142857
//
// ```
func CalculateIoU(r, o Box) float32 {
	ix1 := math32.Max(r.Left, o.Left)
	iy1 := math32.Max(r.Top, o.Top)
	ix2 := math32.Min(r.Right(), o.Right())
	iy2 := math32.Min(r.Bottom(), o.Bottom())

	interW := ix2 - ix1
	interH := iy2 - iy1
	if !(interW > 0) || !(interH > 0) {
		return 0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if !(unionArea > 0) {
		return 0
	}

	return math32.Min(interArea/unionArea, 1)
}
