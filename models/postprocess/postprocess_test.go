package postprocess

import (
	"sync"
	"testing"

	"github.com/nvr-ai/go-detect/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostprocessor(t *testing.T, mutate func(*Config)) *Postprocessor {
	t.Helper()
	cfg := testConfig(LayoutTransposed)
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewPostprocessor(cfg)
	require.NoError(t, err)
	return p
}

// TestPostprocessor_Collapse runs the full pipeline over two overlapping candidates.
func TestPostprocessor_Collapse(t *testing.T) {
	b := newTransposedBuffer(TransposedCandidates, testClasses).
		set(10, 320, 320, 100, 100, 0, 0.6).
		set(20, 320, 325, 100, 90, 0, 0.8)

	p := newTestPostprocessor(t, nil)
	detections, err := p.Process(b.raw(), 640, 640)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, float32(0.8), detections[0].Confidence)
}

// TestPostprocessor_Determinism returns identical sequences for identical inputs.
func TestPostprocessor_Determinism(t *testing.T) {
	raw := randomTransposed(42, 2000).raw()
	p := newTestPostprocessor(t, nil)

	first, err := p.Process(raw, 1920, 1080)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	for i := 0; i < 5; i++ {
		again, err := p.Process(raw, 1920, 1080)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// TestPostprocessor_Invariants checks thresholds, ordering, and the suppression invariant.
func TestPostprocessor_Invariants(t *testing.T) {
	for _, perClass := range []bool{false, true} {
		for seed := int64(1); seed <= 5; seed++ {
			p := newTestPostprocessor(t, func(c *Config) { c.PerClassSuppression = perClass })
			cfg := p.Config()
			raw := randomTransposed(seed, 3000).raw()

			candidates, err := Decode(raw, 1280, 720, cfg)
			require.NoError(t, err)

			detections, err := p.Process(raw, 1280, 720)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(detections), len(candidates))

			for i, d := range detections {
				assert.Greater(t, d.Confidence, cfg.ConfidenceThreshold)
				assert.GreaterOrEqual(t, d.ClassIndex, 0)
				assert.Less(t, d.ClassIndex, testClasses)
				if i > 0 {
					assert.GreaterOrEqual(t, detections[i-1].Confidence, d.Confidence)
				}
				for _, o := range detections[i+1:] {
					if perClass && o.ClassIndex != d.ClassIndex {
						continue
					}
					assert.LessOrEqual(t, images.CalculateIoU(d.Box, o.Box), cfg.IoUThreshold)
				}
			}
		}
	}
}

// TestPostprocessor_ConfidenceMonotonic never returns more detections for a higher threshold.
func TestPostprocessor_ConfidenceMonotonic(t *testing.T) {
	raw := randomTransposed(7, 3000).raw()

	previous := -1
	for _, threshold := range []float32{0.05, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 1} {
		p := newTestPostprocessor(t, func(c *Config) { c.ConfidenceThreshold = threshold })
		detections, err := p.Process(raw, 640, 640)
		require.NoError(t, err)
		if previous >= 0 {
			assert.LessOrEqual(t, len(detections), previous, "threshold %v", threshold)
		}
		previous = len(detections)
	}
	assert.Zero(t, previous, "nothing is strictly above 1")
}

// TestPostprocessor_IoUMonotonic never returns fewer detections for a higher IoU threshold.
func TestPostprocessor_IoUMonotonic(t *testing.T) {
	// A row of boxes sliding by 10px: overlap depends only on the distance between them.
	const n = 40
	b := newTransposedBuffer(n, testClasses)
	for i := 0; i < n; i++ {
		b.set(i, 100+float32(i)*10, 300, 100, 100, i%3, 0.95-float32(i)*0.01)
	}
	raw := b.raw()

	previous := 0
	for _, threshold := range []float32{0, 0.1, 0.2, 0.4, 0.6, 0.8, 0.9, 1} {
		p := newTestPostprocessor(t, func(c *Config) { c.IoUThreshold = threshold })
		detections, err := p.Process(raw, 640, 640)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(detections), previous, "threshold %v", threshold)
		previous = len(detections)
	}
	assert.Equal(t, n, previous, "nothing overlaps strictly above 1")
}

// TestPostprocessor_Concurrent shares one Postprocessor across goroutines.
func TestPostprocessor_Concurrent(t *testing.T) {
	p := newTestPostprocessor(t, nil)
	raws := make([]RawOutput, 8)
	want := make([][]Detection, len(raws))
	for i := range raws {
		raws[i] = randomTransposed(int64(100+i), 1000).raw()
		var err error
		want[i], err = p.Process(raws[i], 640, 480)
		require.NoError(t, err)
	}

	got := make([][]Detection, len(raws))
	errs := make([]error, len(raws))
	var wg sync.WaitGroup
	for i := range raws {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = p.Process(raws[i], 640, 480)
		}(i)
	}
	wg.Wait()

	for i := range raws {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i], got[i])
	}
}

func TestNewPostprocessor_Invalid(t *testing.T) {
	_, err := NewPostprocessor(Config{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

// TestPostprocessor_LabelsCopied isolates the pipeline from later edits to the caller's table.
func TestPostprocessor_LabelsCopied(t *testing.T) {
	cfg := testConfig(LayoutTransposed)
	p, err := NewPostprocessor(cfg)
	require.NoError(t, err)

	cfg.Labels[0] = "changed"
	p.Config().Labels[0] = "changed too"

	b := newTransposedBuffer(1, testClasses).set(0, 320, 320, 10, 10, 0, 0.9)
	detections, err := p.Process(b.raw(), 640, 640)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, "class-0", detections[0].ClassName)
}

func TestPostprocessor_ShapeError(t *testing.T) {
	p := newTestPostprocessor(t, nil)
	raw, err := NewRawOutput(make([]float32, 100), LayoutTransposed)
	require.NoError(t, err)

	detections, err := p.Process(raw, 640, 640)
	assert.True(t, errors.Is(err, ErrInvalidShape))
	assert.Nil(t, detections)
}
