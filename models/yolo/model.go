// Package yolo - YOLO detection models.
package yolo

import (
	"fmt"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// YOLO is an instance of a YOLO model exported with a fixed output layout.
type YOLO struct {
	options       model.Options
	postprocessor *postprocess.Postprocessor
}

// NewModel creates a new model.
//
// Arguments:
//   - args: The arguments for creating a new model. Labels must be set.
//   - layout: The output layout the model was exported with.
//
// Returns:
//   - The model, or an error wrapping postprocess.ErrInvalidConfig.
func NewModel(args model.NewModelArgs, layout postprocess.Layout) (*YOLO, error) {
	cfg := args.PostprocessConfig(layout)
	p, err := postprocess.NewPostprocessor(cfg)
	if err != nil {
		return nil, fmt.Errorf("NewModel %s: %w", args.Name, err)
	}

	family := args.Family
	if family == "" {
		family = model.FamilyYOLO
	}

	return &YOLO{
		options: model.Options{
			Name:        args.Name,
			Family:      family,
			Path:        args.Path,
			Postprocess: p.Config(),
		},
		postprocessor: p,
	}, nil
}

// Options returns the options for the YOLO model.
func (m *YOLO) Options() model.Options {
	return m.options
}

// Layout returns the output layout of the model.
func (m *YOLO) Layout() postprocess.Layout {
	return m.options.Postprocess.Layout
}
