// Package nn implements the neural network layers of the language model.
//
// This package provides:
//   - Parameter / ParameterSet: named trainable tensors in a stable order
//   - Initializer: Constant, IsotropicGaussian and Orthogonal strategies
//   - Embedding: token id lookup table
//   - Linear: affine projection y = x @ W + b
//   - SimpleRecurrent / RecurrentStack: tanh recurrent layers
//   - CrossEntropyBits: softmax cross-entropy measured in bits
//   - Save / Load: SafeTensors checkpoints of a ParameterSet
//
// Layers are generic over the float storage type T and the backend B, so the
// same code builds a float32 training graph on an autodiff backend or a
// float64 graph for gradient checks.
package nn

import (
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Module is the base interface for the layers in this package.
//
// Construction only allocates parameters; values are assigned later by
// Initialize, once the whole topology exists.
type Module[T tensor.Float, B tensor.Backend] interface {
	// Parameters returns all trainable parameters of this module in a
	// stable order.
	Parameters() []*Parameter[T, B]

	// Initialize draws every parameter from its initializer using src.
	Initialize(src rand.Source)
}

// initializeAll initializes params in order, sharing one random stream.
func initializeAll[T tensor.Float, B tensor.Backend](params []*Parameter[T, B], src rand.Source) {
	for _, p := range params {
		p.Initialize(src)
	}
}
