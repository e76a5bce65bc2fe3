package postprocess

// Postprocessor decodes and suppresses raw outputs with a fixed configuration.
//
// It holds no mutable state and is safe for concurrent use.
type Postprocessor struct {
	config Config
}

// NewPostprocessor validates cfg and returns a Postprocessor for it.
//
// The label table is copied so later changes to cfg.Labels have no effect.
func NewPostprocessor(cfg Config) (*Postprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Labels = append([]string(nil), cfg.Labels...)
	return &Postprocessor{config: cfg}, nil
}

// Config returns a copy of the configuration.
func (p *Postprocessor) Config() Config {
	cfg := p.config
	cfg.Labels = append([]string(nil), p.config.Labels...)
	return cfg
}

// Process decodes raw and applies Non-Maximum Suppression.
//
// Arguments:
//   - raw: The raw model output.
//   - width: The original image width in pixels.
//   - height: The original image height in pixels.
//
// Returns:
//   - []Detection: Detections in descending confidence order.
//   - error: ErrInvalidConfig or ErrInvalidShape. An empty result with a nil
//     error means nothing was detected.
func (p *Postprocessor) Process(raw RawOutput, width, height int) ([]Detection, error) {
	detections, err := decode(raw, width, height, p.config)
	if err != nil {
		return nil, err
	}
	return ApplyGreedyNMS(detections, p.config.NMS()), nil
}
