// Package config - File configuration for the detection tools.
package config

import (
	"os"

	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file.
//
//	model:
//	  name: yolov8
//	  confidence_threshold: 0.3
//	  iou_threshold: 0.4
//	session:
//	  model_path: yolov8n.onnx
//	workers: 4
//	log_level: info
type Config struct {
	Model   model.NewModelArgs      `json:"model" yaml:"model"`
	Session inference.SessionConfig `json:"session" yaml:"session"`
	// Workers bounds how many frames are processed at once. 0 uses one per CPU.
	Workers  int    `json:"workers" yaml:"workers"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	session := inference.DefaultSessionConfig()
	session.InputShape = nil
	session.OutputShape = nil
	return Config{
		Model:    model.NewModelArgs{Name: model.ModelNameYOLOv8},
		Session:  session,
		LogLevel: "info",
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and then normalizes and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to decode config")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills the values derived from other fields: the session model
// path from the model path, and the session input and output shapes from the
// model input size and layout. Shapes set explicitly are kept.
func (c *Config) Normalize() {
	if c.Session.ModelPath == "" {
		c.Session.ModelPath = c.Model.Path
	}
	size := c.Model.InputSize
	if size == 0 {
		size = postprocess.DefaultInputSize
	}
	if len(c.Session.InputShape) == 0 && size > 0 {
		c.Session.InputShape = []int64{1, 3, int64(size), int64(size)}
	}
	if len(c.Session.OutputShape) > 0 {
		return
	}
	layout, err := models.LayoutFor(c.Model.Name)
	if err != nil {
		return
	}
	classes := len(c.Model.Labels)
	if classes == 0 {
		classes = len(models.YOLOClasses.Classes)
	}
	attrs, n := int64(layout.Attributes(classes)), int64(layout.CandidatesFor(size))
	if n == 0 {
		return
	}
	if layout == postprocess.LayoutTransposed {
		c.Session.OutputShape = []int64{1, attrs, n}
	} else {
		c.Session.OutputShape = []int64{1, n, attrs}
	}
}

// Validate reports every problem with the configuration at once. The session
// is only checked when a model path is set.
func (c Config) Validate() error {
	var err error
	layout, layoutErr := models.LayoutFor(c.Model.Name)
	if layoutErr != nil {
		err = multierr.Append(err, layoutErr)
	} else {
		pp := c.Model.PostprocessConfig(layout)
		if len(pp.Labels) == 0 {
			pp.Labels = models.YOLOClasses.Names()
		}
		err = multierr.Append(err, pp.Validate())
	}
	if c.Workers < 0 {
		err = multierr.Append(err, errors.Errorf("workers %d must not be negative", c.Workers))
	}
	if c.LogLevel != "" {
		if _, levelErr := zap.ParseAtomicLevel(c.LogLevel); levelErr != nil {
			err = multierr.Append(err, errors.Wrapf(levelErr, "invalid log level %q", c.LogLevel))
		}
	}
	if c.Session.ModelPath != "" {
		err = multierr.Append(err, c.Session.Validate())
	}
	return err
}
