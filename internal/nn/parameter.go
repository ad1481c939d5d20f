package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	w := nn.NewParameter[float32]("output_layer.weight", tensor.Shape{8, 10},
//	    nn.IsotropicGaussian{Std: 0.1}, backend)
//	w.Initialize(src)
//	grad := w.Grad() // nil until gradients are assigned
type Parameter[T tensor.Float, B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[T, B]
	init   Initializer
	grad   *tensor.Tensor[T, B]
}

// NewParameter allocates a zero-filled parameter of the given shape.
// init is applied by Initialize; a nil init leaves the values at zero.
func NewParameter[T tensor.Float, B tensor.Backend](name string, shape tensor.Shape, init Initializer, backend B) *Parameter[T, B] {
	return &Parameter[T, B]{
		name:   name,
		tensor: tensor.Zeros[T](shape, backend),
		init:   init,
	}
}

// Name returns the parameter name.
func (p *Parameter[T, B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[T, B]) Tensor() *tensor.Tensor[T, B] {
	return p.tensor
}

// Shape returns the parameter shape.
func (p *Parameter[T, B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Initializer returns the strategy used by Initialize.
func (p *Parameter[T, B]) Initializer() Initializer {
	return p.init
}

// Initialize overwrites the parameter values in place with draws from its
// initializer.
func (p *Parameter[T, B]) Initialize(src rand.Source) {
	if p.init == nil {
		return
	}
	values := p.init.Init(p.Shape(), src)
	data := p.tensor.Data()
	for i, v := range values {
		data[i] = T(v)
	}
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been assigned since the last ZeroGrad.
func (p *Parameter[T, B]) Grad() *tensor.Tensor[T, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[T, B]) SetGrad(grad *tensor.Tensor[T, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[T, B]) ZeroGrad() {
	p.grad = nil
}

// Load copies values from raw into the parameter.
// The shape must match; float32 and float64 sources are converted.
func (p *Parameter[T, B]) Load(raw *tensor.RawTensor) error {
	if !raw.Shape().Equal(p.Shape()) {
		return fmt.Errorf("%w: %s has shape %v, checkpoint has %v", ErrShapeMismatch, p.name, p.Shape(), raw.Shape())
	}
	if !raw.DType().IsFloat() {
		return fmt.Errorf("%w: %s stored as %s", ErrShapeMismatch, p.name, raw.DType())
	}
	data := p.tensor.Data()
	for i, v := range raw.Float64s() {
		data[i] = T(v)
	}
	return nil
}
