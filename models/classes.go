package models

import (
	"fmt"

	"github.com/nvr-ai/go-detect/models/model"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a model family to its ordered list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Style model.Family
	// Classes ordered by index.
	Classes []OutputClass
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// NewOutputClassSet builds a set whose indices follow the order of names.
func NewOutputClassSet(style model.Family, names ...string) *OutputClassSet {
	set := &OutputClassSet{Style: style, Classes: make([]OutputClass, len(names))}
	for i, name := range names {
		set.Classes[i] = OutputClass{Index: i, Name: name}
	}
	set.BuildNameIndexMap()
	return set
}

// BuildNameIndexMap builds or rebuilds the name->index map.
func (s *OutputClassSet) BuildNameIndexMap() {
	s.nameToIdx = make(map[string]int, len(s.Classes))
	for _, c := range s.Classes {
		s.nameToIdx[c.Name] = c.Index
	}
}

// Names returns a fresh copy of the labels in index order, suitable as a
// postprocess.Config label table.
func (s *OutputClassSet) Names() []string {
	names := make([]string, len(s.Classes))
	for i, c := range s.Classes {
		names[i] = c.Name
	}
	return names
}

// ClassManager holds all registered class sets.
type ClassManager struct {
	sets map[model.Family]*OutputClassSet
}

// NewClassManager initializes and registers the given sets.
func NewClassManager(allSets ...*OutputClassSet) *ClassManager {
	mgr := &ClassManager{sets: make(map[model.Family]*OutputClassSet)}
	for _, set := range allSets {
		set.BuildNameIndexMap()
		mgr.sets[set.Style] = set
	}
	return mgr
}

// Set returns the class set registered for a family.
func (m *ClassManager) Set(style model.Family) (*OutputClassSet, error) {
	set, ok := m.sets[style]
	if !ok {
		return nil, fmt.Errorf("style %q not registered", style)
	}
	return set, nil
}

// GetName returns the class name for a given style and index.
func (m *ClassManager) GetName(style model.Family, idx int) (string, error) {
	set, err := m.Set(style)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(set.Classes) {
		return "", fmt.Errorf("index %d out of range for style %q", idx, style)
	}
	return set.Classes[idx].Name, nil
}

// GetIndex returns the class index for a given style and name.
func (m *ClassManager) GetIndex(style model.Family, name string) (int, error) {
	set, err := m.Set(style)
	if err != nil {
		return -1, err
	}
	idx, ok := set.nameToIdx[name]
	if !ok {
		return -1, fmt.Errorf("name %q not found in style %q", name, style)
	}
	return idx, nil
}

// YOLOClasses is the 80 COCO classes (no background).
// YOLO models index directly into this zero-based list.
var YOLOClasses = NewOutputClassSet(model.FamilyYOLO,
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
)

// Classes is the default registry of label tables by model family.
var Classes = NewClassManager(YOLOClasses)
