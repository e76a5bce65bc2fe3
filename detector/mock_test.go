package detector

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-detect/inference"
)

const mockCandidates = 16

// mockRunner emits a YOLOv8-style output with one person box whose center x
// is taken from input[0], so each frame produces a distinguishable detection.
//
// @example
// runner := &mockRunner{}
// out, _ := runner.Run(ctx, []float32{320})
type mockRunner struct {
	// failOn makes Run fail for inputs whose first value matches.
	failOn *float32
	// delay returns how long Run should block for an input.
	delay  func(input []float32) time.Duration
	calls  atomic.Int64
	closed atomic.Bool
}

var errMockRun = errors.New("mock inference failure")

func (m *mockRunner) Run(ctx context.Context, input []float32) (inference.Output, error) {
	m.calls.Add(1)
	if m.failOn != nil && input[0] == *m.failOn {
		return inference.Output{}, errMockRun
	}
	if m.delay != nil {
		select {
		case <-time.After(m.delay(input)):
		case <-ctx.Done():
			return inference.Output{}, ctx.Err()
		}
	}

	const attrs = 4 + 80
	data := make([]float32, attrs*mockCandidates)
	data[0] = input[0]           // cx
	data[mockCandidates] = 320   // cy
	data[2*mockCandidates] = 100 // w
	data[3*mockCandidates] = 50  // h
	data[4*mockCandidates] = 0.9 // person
	return inference.Output{Data: data, Shape: []int64{1, attrs, mockCandidates}}, nil
}

func (m *mockRunner) Close() error {
	m.closed.Store(true)
	return nil
}
