package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/logging"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/profiler"
	"github.com/nvr-ai/go-detect/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "detect",
		Usage: "decode YOLO output tensors into detections",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "model", Usage: "model name: yolov8, yolo11 or yolov5"},
			&cli.Float64Flag{Name: "confidence", Usage: "confidence threshold in [0, 1]"},
			&cli.Float64Flag{Name: "iou", Usage: "NMS IoU threshold in [0, 1]"},
			&cli.IntFlag{Name: "input-size", Usage: "side length of the square model input"},
			&cli.BoolFlag{Name: "per-class", Usage: "only suppress boxes of the same class"},
			&cli.IntFlag{Name: "width", Value: 640, Usage: "original image width in pixels"},
			&cli.IntFlag{Name: "height", Value: 640, Usage: "original image height in pixels"},
			&cli.IntFlag{Name: "workers", Usage: "frames processed at once (0 = one per CPU)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "stats", Usage: "log a timing and memory summary"},
		},
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "decode output tensor dumps (little-endian float32)",
				ArgsUsage: "<file.bin | directory of frame-N.bin>",
				Action:    decodeAction,
			},
			{
				Name:      "run",
				Usage:     "run an ONNX model over input tensor dumps and decode its output",
				ArgsUsage: "<file.bin | directory of frame-N.bin>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model-path", Usage: "path to the .onnx model"},
					&cli.StringFlag{Name: "shared-lib", Usage: "path to the onnxruntime shared library"},
				},
				Action: runAction,
			},
		},
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if c.IsSet("model") {
		cfg.Model.Name = model.Name(c.String("model"))
		cfg.Session.OutputShape = nil
	}
	if c.IsSet("confidence") {
		v := float32(c.Float64("confidence"))
		cfg.Model.ConfidenceThreshold = &v
	}
	if c.IsSet("iou") {
		v := float32(c.Float64("iou"))
		cfg.Model.IoUThreshold = &v
	}
	if c.IsSet("input-size") {
		cfg.Model.InputSize = c.Int("input-size")
		cfg.Session.InputShape = nil
		cfg.Session.OutputShape = nil
	}
	if c.IsSet("per-class") {
		cfg.Model.PerClassSuppression = c.Bool("per-class")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("model-path") {
		cfg.Model.Path = c.String("model-path")
		cfg.Session.ModelPath = cfg.Model.Path
	}
	if c.IsSet("shared-lib") {
		cfg.Session.SharedLibPath = c.String("shared-lib")
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setup builds the logger and detector shared by every command.
func setup(c *cli.Context, runner func(config.Config, *zap.SugaredLogger) (inference.Runner, error)) (
	*detector.Detector, config.Config, *zap.SugaredLogger, func(), error,
) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, config.Config{}, nil, nil, err
	}
	logger, err := logging.NewLogger("detect", cfg.LogLevel)
	if err != nil {
		return nil, config.Config{}, nil, nil, err
	}
	m, err := models.NewModel(cfg.Model)
	if err != nil {
		return nil, config.Config{}, nil, nil, err
	}

	cleanup := func() { _ = logger.Sync() }
	var r inference.Runner
	if runner != nil {
		if r, err = runner(cfg, logger); err != nil {
			return nil, config.Config{}, nil, nil, err
		}
		cleanup = func() {
			if err := r.Close(); err != nil {
				logger.Warnw("unable to close session", "error", err)
			}
			_ = logger.Sync()
		}
	}
	return detector.New(r, m, logger), cfg, logger, cleanup, nil
}

// loadTensors reads one dump or every frame-N.bin dump of a directory.
func loadTensors(path string) ([]util.TensorFile, error) {
	if path == "" {
		return nil, errors.New("a tensor file or directory is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return util.LoadDirectoryTensorFiles(path)
	}
	data, err := util.LoadTensorFile(path)
	if err != nil {
		return nil, err
	}
	return []util.TensorFile{{Path: path, Data: data}}, nil
}

func decodeAction(c *cli.Context) error {
	d, cfg, logger, cleanup, err := setup(c, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	tensors, err := loadTensors(c.Args().First())
	if err != nil {
		return err
	}

	frames := make([]detector.RawFrame, len(tensors))
	for i, t := range tensors {
		frames[i] = detector.RawFrame{
			Seq:    uint64(t.Frame),
			Output: inference.Output{Data: t.Data, Shape: cfg.Session.OutputShape},
			Width:  c.Int("width"),
			Height: c.Int("height"),
		}
	}

	start := time.Now()
	results, err := d.DetectOutputs(c.Context, frames, cfg.Workers)
	if err != nil {
		return err
	}
	logSummary(c, logger, "decoded", results, time.Since(start))
	return writeResults(c, results)
}

func runAction(c *cli.Context) error {
	d, cfg, logger, cleanup, err := setup(c, func(cfg config.Config, logger *zap.SugaredLogger) (inference.Runner, error) {
		if cfg.Session.ModelPath == "" {
			return nil, errors.New("run requires a model path")
		}
		return inference.NewSession(cfg.Session, logger)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	tensors, err := loadTensors(c.Args().First())
	if err != nil {
		return err
	}

	frames := make([]detector.Frame, len(tensors))
	for i, t := range tensors {
		frames[i] = detector.Frame{
			Seq:    uint64(t.Frame),
			Input:  t.Data,
			Width:  c.Int("width"),
			Height: c.Int("height"),
		}
	}

	start := time.Now()
	results, err := d.DetectAll(c.Context, frames, cfg.Workers)
	if err != nil {
		return err
	}
	logSummary(c, logger, "inferred", results, time.Since(start))
	return writeResults(c, results)
}

func logSummary(c *cli.Context, logger *zap.SugaredLogger, msg string, results []detector.Result, elapsed time.Duration) {
	if !c.Bool("stats") {
		logger.Infow(msg, "frames", len(results))
		return
	}
	logger.Infow(msg, profiler.Summarize(results, elapsed).Fields()...)
}

func writeResults(c *cli.Context, results []detector.Result) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
