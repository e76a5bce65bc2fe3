package inference

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("session closed")

var envMu sync.Mutex

// Session represents a model session from the onnxruntime.
//
// The input and output tensors are allocated once, so runs are serialized.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	logger  *zap.SugaredLogger
}

// NewSession creates a new onnxruntime session.
//
// Arguments:
//   - cfg: The session configuration.
//   - logger: The logger for session lifecycle events.
//
// Returns:
//   - *Session: The session.
//   - error: An error if the configuration is invalid, the shared library is
//     missing, or the runtime rejects the model.
func NewSession(cfg SessionConfig, logger *zap.SugaredLogger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Check if the shared library exists before trying to use it.
	if _, err := os.Stat(cfg.SharedLibPath); err != nil {
		return nil, errors.Wrapf(err, "onnxruntime library not found at %s", cfg.SharedLibPath)
	}
	if err := initEnvironment(cfg.SharedLibPath); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
		logger.Warnw("unable to set intra-op threads", "threads", cfg.IntraOpThreads, "error", err)
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
		logger.Warnw("unable to set inter-op threads", "threads", cfg.InterOpThreads, "error", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	logger.Infow("onnxruntime session ready",
		"model", cfg.ModelPath, "input", cfg.InputShape, "output", cfg.OutputShape)

	return &Session{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		logger:  logger,
	}, nil
}

func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}
	return nil
}

// Run copies input into the session input tensor, runs the model and returns
// a copy of the output tensor.
func (s *Session) Run(ctx context.Context, input []float32) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Output{}, ErrClosed
	}

	dst := s.input.GetData()
	if len(input) != len(dst) {
		return Output{}, errors.Wrapf(ErrInvalidSession, "input has %d values, tensor %v needs %d",
			len(input), s.input.GetShape(), len(dst))
	}
	copy(dst, input)

	if err := s.session.Run(); err != nil {
		return Output{}, errors.Wrap(err, "error running ORT session")
	}

	return Output{
		Data:  append([]float32(nil), s.output.GetData()...),
		Shape: append([]int64(nil), s.output.GetShape()...),
	}, nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		if destroyErr := s.input.Destroy(); err == nil {
			err = destroyErr
		}
		s.input = nil
	}
	if s.output != nil {
		if destroyErr := s.output.Destroy(); err == nil {
			err = destroyErr
		}
		s.output = nil
	}
	return err
}
