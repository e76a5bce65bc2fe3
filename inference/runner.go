// Package inference - Adapters for the runtimes that produce raw model outputs.
package inference

import "context"

// Output is one raw output tensor copied out of the runtime.
type Output struct {
	Data  []float32
	Shape []int64
}

// Runner runs a model over a preprocessed input tensor.
type Runner interface {
	Run(ctx context.Context, input []float32) (Output, error)
	Close() error
}
