package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-detect/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 // Overlap above which the lower-scored box is suppressed.
	ClassAware   bool    // If true, suppress only within same class.
}

// ApplyGreedyNMS performs greedy Non-Maximum Suppression.
//
// The detections are sorted by descending confidence (stable, so equal
// confidences keep their input order) into a copy; the input slice is not
// modified. Each kept detection suppresses every later detection whose IoU
// with it is strictly greater than the threshold. Unless ClassAware is set,
// boxes of different classes suppress each other.
//
// Arguments:
//   - detections: Detections in any order.
//   - config: NMS configuration. nil uses DefaultIoUThreshold, class-agnostic.
//
// Returns:
//   - The kept detections in descending confidence order. Empty, never nil.
func ApplyGreedyNMS(detections []Detection, config *NMSConfig) []Detection {
	n := len(detections)
	if n == 0 {
		return []Detection{}
	}
	if config == nil {
		config = &NMSConfig{IoUThreshold: DefaultIoUThreshold}
	}

	sorted := make([]Detection, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := sorted[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.ClassIndex != sorted[j].ClassIndex {
				continue
			}
			if images.CalculateIoU(anchor.Box, sorted[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
