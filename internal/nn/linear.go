package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// LinearConfig describes an affine layer.
type LinearConfig struct {
	InFeatures  int
	OutFeatures int
	WeightInit  Initializer
	BiasInit    Initializer
}

// Linear implements a fully connected layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x has shape [..., in_features]
//   - W has shape [in_features, out_features]
//   - b has shape [out_features]
//   - y has shape [..., out_features]
//
// Inputs with more than two dimensions are flattened to
// [prod(leading), in_features] for the product and reshaped back.
type Linear[T tensor.Float, B tensor.Backend] struct {
	Weight *Parameter[T, B]
	Bias   *Parameter[T, B]
	cfg    LinearConfig
}

// NewLinear allocates "<name>.weight" and "<name>.bias".
func NewLinear[T tensor.Float, B tensor.Backend](name string, cfg LinearConfig, backend B) *Linear[T, B] {
	return &Linear[T, B]{
		Weight: NewParameter[T](name+".weight", tensor.Shape{cfg.InFeatures, cfg.OutFeatures}, cfg.WeightInit, backend),
		Bias:   NewParameter[T](name+".bias", tensor.Shape{cfg.OutFeatures}, cfg.BiasInit, backend),
		cfg:    cfg,
	}
}

// Forward computes x @ W + b over the last dimension of x.
func (l *Linear[T, B]) Forward(x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.cfg.InFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input [..., %d], got shape %v", l.cfg.InFeatures, shape))
	}

	flat := x
	if len(shape) != 2 {
		flat = x.Reshape(shape.Outer(len(shape)-1), l.cfg.InFeatures)
	}
	out := flat.MatMul(l.Weight.Tensor()).Add(l.Bias.Tensor())
	if len(shape) == 2 {
		return out
	}

	outShape := append(shape[:len(shape)-1].Clone(), l.cfg.OutFeatures)
	return out.Reshape(outShape...)
}

// Parameters returns [Weight, Bias].
func (l *Linear[T, B]) Parameters() []*Parameter[T, B] {
	return []*Parameter[T, B]{l.Weight, l.Bias}
}

// Initialize draws the weight and bias from their initializers.
func (l *Linear[T, B]) Initialize(src rand.Source) {
	initializeAll(l.Parameters(), src)
}

// InFeatures returns the number of input features.
func (l *Linear[T, B]) InFeatures() int {
	return l.cfg.InFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[T, B]) OutFeatures() int {
	return l.cfg.OutFeatures
}
