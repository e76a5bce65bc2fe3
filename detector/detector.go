// Package detector - Runs detection models over frames.
package detector

import (
	"context"
	"time"

	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Frame is one preprocessed input tensor together with its source image size.
type Frame struct {
	// Seq orders frames; results carry it back.
	Seq uint64
	// Input is the preprocessed model input.
	Input []float32
	// Width and Height are the original image dimensions in pixels.
	Width  int
	Height int
}

// RawFrame is a model output that has already been computed by the runtime.
type RawFrame struct {
	Seq    uint64
	Output inference.Output
	Width  int
	Height int
}

// Result holds the detections of one frame.
type Result struct {
	Seq        uint64                  `json:"seq"`
	Detections []postprocess.Detection `json:"detections"`
	Duration   time.Duration           `json:"duration"`
}

// Detector pairs a runtime with a model's postprocessing.
type Detector struct {
	runner inference.Runner
	model  model.Model
	logger *zap.SugaredLogger
}

// New creates a Detector. runner may be nil when only DetectOutput is used,
// and a nil logger discards log output.
func New(runner inference.Runner, m model.Model, logger *zap.SugaredLogger) *Detector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Detector{runner: runner, model: m, logger: logger}
}

// Detect runs the model on one frame and decodes its output.
func (d *Detector) Detect(ctx context.Context, frame Frame) (Result, error) {
	if d.runner == nil {
		return Result{}, errors.New("detector has no runner")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	output, err := d.runner.Run(ctx, frame.Input)
	if err != nil {
		return Result{}, errors.Wrapf(err, "frame %d: inference failed", frame.Seq)
	}
	inferred := time.Since(start)

	result, err := d.DetectOutput(RawFrame{Seq: frame.Seq, Output: output, Width: frame.Width, Height: frame.Height})
	if err != nil {
		return Result{}, err
	}
	result.Duration = time.Since(start)

	d.logger.Debugw("frame inferred", "seq", frame.Seq, "inference", inferred, "total", result.Duration)
	return result, nil
}

// DetectOutput decodes an output the runtime has already produced.
func (d *Detector) DetectOutput(frame RawFrame) (Result, error) {
	start := time.Now()

	raw, err := postprocess.NewRawOutput(frame.Output.Data, d.model.Layout(), frame.Output.Shape...)
	if err != nil {
		return Result{}, errors.Wrapf(err, "frame %d", frame.Seq)
	}

	detections, err := d.model.PostProcess(raw, frame.Width, frame.Height)
	if err != nil {
		return Result{}, errors.Wrapf(err, "frame %d", frame.Seq)
	}

	result := Result{Seq: frame.Seq, Detections: detections, Duration: time.Since(start)}
	d.logger.Debugw("frame decoded",
		"seq", frame.Seq, "detections", len(detections), "duration", result.Duration)
	return result, nil
}
