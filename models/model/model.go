// Package model - Definitions shared by detection models.
package model

import "github.com/nvr-ai/go-detect/models/postprocess"

// Family is the family of models.
type Family string

const (
	// FamilyYOLO is the YOLO model family (80 COCO classes, no background).
	FamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv5 is the name of the YOLOv5 model ([1, 25200, 85] output).
	ModelNameYOLOv5 Name = "yolov5"
	// ModelNameYOLOv8 is the name of the YOLOv8 model ([1, 84, 8400] output).
	ModelNameYOLOv8 Name = "yolov8"
	// ModelNameYOLO11 is the name of the YOLO11 model ([1, 84, 8400] output).
	ModelNameYOLO11 Name = "yolo11"
)

// Options describes a constructed model.
type Options struct {
	Name        Name
	Family      Family
	Path        string
	Postprocess postprocess.Config
}

// Model turns raw outputs of one detection model into detections.
type Model interface {
	Options() Options
	Layout() postprocess.Layout
	PostProcess(raw postprocess.RawOutput, width, height int) ([]postprocess.Detection, error)
}

// NewModelArgs is the arguments for creating a new model.
//
// Unset thresholds fall back to the defaults of the model's layout.
type NewModelArgs struct {
	Name                Name     `json:"name" yaml:"name"`
	Family              Family   `json:"family" yaml:"family"`
	Path                string   `json:"path" yaml:"path"`
	Labels              []string `json:"labels" yaml:"labels"`
	ConfidenceThreshold *float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	IoUThreshold        *float32 `json:"iou_threshold" yaml:"iou_threshold"`
	InputSize           int      `json:"input_size" yaml:"input_size"`
	PerClassSuppression bool     `json:"per_class_suppression" yaml:"per_class_suppression"`
}

// PostprocessConfig overlays the arguments on the defaults for layout.
func (a NewModelArgs) PostprocessConfig(layout postprocess.Layout) postprocess.Config {
	cfg := postprocess.DefaultConfig(layout)
	if a.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *a.ConfidenceThreshold
	}
	if a.IoUThreshold != nil {
		cfg.IoUThreshold = *a.IoUThreshold
	}
	if a.InputSize != 0 {
		cfg.InputSize = a.InputSize
	}
	cfg.PerClassSuppression = a.PerClassSuppression
	cfg.Labels = append([]string(nil), a.Labels...)
	return cfg
}
