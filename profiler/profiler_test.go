package profiler

import (
	"testing"
	"time"

	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/stretchr/testify/assert"
)

func TestTimeTracker(t *testing.T) {
	var tt TimeTracker
	assert.Zero(t, tt.Mean())
	assert.Zero(t, tt.Percentile(95))

	for i := 1; i <= 20; i++ {
		tt.Record(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, time.Millisecond, tt.minTime)
	assert.Equal(t, 20*time.Millisecond, tt.maxTime)
	assert.Equal(t, 10500*time.Microsecond, tt.Mean())
	assert.Equal(t, 19*time.Millisecond, tt.Percentile(95))
	assert.Equal(t, 20*time.Millisecond, tt.Percentile(100))
	assert.Equal(t, time.Millisecond, tt.Percentile(1))
}

func TestSummarize(t *testing.T) {
	results := []detector.Result{
		{Seq: 0, Detections: make([]postprocess.Detection, 2), Duration: 10 * time.Millisecond},
		{Seq: 1, Detections: nil, Duration: 30 * time.Millisecond},
		{Seq: 2, Detections: make([]postprocess.Detection, 1), Duration: 20 * time.Millisecond},
	}
	s := Summarize(results, 2*time.Second)

	assert.Equal(t, 3, s.Frames)
	assert.Equal(t, 3, s.Detections)
	assert.Equal(t, 10*time.Millisecond, s.MinDuration)
	assert.Equal(t, 20*time.Millisecond, s.MeanDuration)
	assert.Equal(t, 30*time.Millisecond, s.MaxDuration)
	assert.InDelta(t, 1.5, s.FramesPerSecond, 1e-9)
	assert.NotZero(t, s.Memory.SysBytes)
	assert.Len(t, s.Fields(), 16)

	empty := Summarize(nil, 0)
	assert.Zero(t, empty.Frames)
	assert.Zero(t, empty.FramesPerSecond)
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:             "512 B",
		1024:            "1.0 KB",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in))
	}
}
