// Package profiler - Timing and memory summaries of detection runs.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/nvr-ai/go-detect/detector"
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
}

// Record adds one sample.
func (tt *TimeTracker) Record(d time.Duration) {
	if len(tt.durations) == 0 || d < tt.minTime {
		tt.minTime = d
	}
	if d > tt.maxTime {
		tt.maxTime = d
	}
	tt.durations = append(tt.durations, d)
	tt.totalTime += d
}

// Mean returns the average sample, or 0 when nothing was recorded.
func (tt *TimeTracker) Mean() time.Duration {
	if len(tt.durations) == 0 {
		return 0
	}
	return tt.totalTime / time.Duration(len(tt.durations))
}

// Percentile returns the nearest-rank p-th percentile for p in (0, 100].
func (tt *TimeTracker) Percentile(p float64) time.Duration {
	if len(tt.durations) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), tt.durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(p/100*float64(len(sorted)) + 0.5)
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// MemoryMetrics captures memory usage statistics.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	NumGC           uint32 `json:"num_gc"`
}

// ReadMemory snapshots the runtime memory statistics.
func ReadMemory() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryMetrics{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		HeapAllocBytes:  m.HeapAlloc,
		NumGC:           m.NumGC,
	}
}

// Summary describes a batch of processed frames.
type Summary struct {
	Frames          int           `json:"frames"`
	Detections      int           `json:"detections"`
	Elapsed         time.Duration `json:"elapsed"`
	MinDuration     time.Duration `json:"min_duration"`
	MeanDuration    time.Duration `json:"mean_duration"`
	P95Duration     time.Duration `json:"p95_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	FramesPerSecond float64       `json:"frames_per_second"`
	Memory          MemoryMetrics `json:"memory"`
}

// Summarize aggregates per-frame durations. elapsed is the wall time of the
// whole batch, which is shorter than the summed durations when frames ran
// concurrently.
func Summarize(results []detector.Result, elapsed time.Duration) Summary {
	var tt TimeTracker
	s := Summary{Frames: len(results), Elapsed: elapsed, Memory: ReadMemory()}
	for _, r := range results {
		tt.Record(r.Duration)
		s.Detections += len(r.Detections)
	}
	s.MinDuration = tt.minTime
	s.MaxDuration = tt.maxTime
	s.MeanDuration = tt.Mean()
	s.P95Duration = tt.Percentile(95)
	if elapsed > 0 {
		s.FramesPerSecond = float64(len(results)) / elapsed.Seconds()
	}
	return s
}

// Fields returns the summary as zap key/value pairs.
func (s Summary) Fields() []interface{} {
	return []interface{}{
		"frames", s.Frames,
		"detections", s.Detections,
		"elapsed", s.Elapsed,
		"mean", s.MeanDuration,
		"p95", s.P95Duration,
		"max", s.MaxDuration,
		"fps", fmt.Sprintf("%.1f", s.FramesPerSecond),
		"heap", FormatBytes(s.Memory.HeapAllocBytes),
	}
}

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
