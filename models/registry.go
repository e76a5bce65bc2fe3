// Package models - registry for models.
package models

import (
	"fmt"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/models/yolo"
)

// LayoutFor returns the output layout a model name is exported with.
func LayoutFor(name model.Name) (postprocess.Layout, error) {
	switch name {
	case model.ModelNameYOLOv8, model.ModelNameYOLO11:
		return postprocess.LayoutTransposed, nil
	case model.ModelNameYOLOv5:
		return postprocess.LayoutInterleaved, nil
	default:
		return 0, fmt.Errorf("unsupported model name: %s", name)
	}
}

// NewModel creates a new detection model instance based on the specified model name.
//
// When args.Labels is empty the label table registered for the model family
// in Classes is used.
//
// Arguments:
//   - args: Configuration parameters specifying the model name and thresholds.
//
// Returns:
//   - model.Model: A fully configured model instance.
//   - error: An error if the model name is unsupported or the configuration is invalid.
//
// Example:
//
// ```go
//
//	detectionModel, err := NewModel(model.NewModelArgs{Name: model.ModelNameYOLOv8})
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
//
//	detections, err := detectionModel.PostProcess(raw, 1920, 1080)
//
// ```
func NewModel(args model.NewModelArgs) (model.Model, error) {
	layout, err := LayoutFor(args.Name)
	if err != nil {
		return nil, err
	}

	if args.Family == "" {
		args.Family = model.FamilyYOLO
	}
	if len(args.Labels) == 0 {
		set, err := Classes.Set(args.Family)
		if err != nil {
			return nil, err
		}
		args.Labels = set.Names()
	}

	m, err := yolo.NewModel(args, layout)
	if err != nil {
		return nil, err
	}
	return m, nil
}
