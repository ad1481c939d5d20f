// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Module is implemented by every layer in this package.
type Module[T tensor.Float, B tensor.Backend] = nn.Module[T, B]

// Parameter is a named trainable tensor.
type Parameter[T tensor.Float, B tensor.Backend] = nn.Parameter[T, B]

// NewParameter allocates a zeroed parameter; values are drawn by Initialize.
func NewParameter[T tensor.Float, B tensor.Backend](name string, shape tensor.Shape, init Initializer, backend B) *Parameter[T, B] {
	return nn.NewParameter[T](name, shape, init, backend)
}

// ParameterSet holds parameters in a stable, name-unique order.
type ParameterSet[T tensor.Float, B tensor.Backend] = nn.ParameterSet[T, B]

// NewParameterSet collects params. Duplicate names are an error.
func NewParameterSet[T tensor.Float, B tensor.Backend](params ...*Parameter[T, B]) (*ParameterSet[T, B], error) {
	return nn.NewParameterSet(params...)
}

// Initialization

// Initializer draws initial parameter values.
type Initializer = nn.Initializer

// Constant fills a parameter with one value.
type Constant = nn.Constant

// IsotropicGaussian draws each element from N(Mean, Std²).
type IsotropicGaussian = nn.IsotropicGaussian

// Orthogonal draws a scaled orthonormal matrix.
type Orthogonal = nn.Orthogonal

// Layers

// Embedding is a token lookup table.
type Embedding[T tensor.Float, B tensor.Backend] = nn.Embedding[T, B]

// EmbeddingConfig configures NewEmbedding.
type EmbeddingConfig = nn.EmbeddingConfig

// NewEmbedding allocates "<name>.weight" of shape (NumEmbeddings, Dim).
//
// Example:
//
//	emb := nn.NewEmbedding[float32]("embedding", nn.EmbeddingConfig{
//	    NumEmbeddings: vocab,
//	    Dim:           256,
//	    Init:          nn.IsotropicGaussian{Std: 0.1},
//	}, backend)
func NewEmbedding[T tensor.Float, B tensor.Backend](name string, cfg EmbeddingConfig, backend B) *Embedding[T, B] {
	return nn.NewEmbedding[T](name, cfg, backend)
}

// Linear is an affine projection y = x @ W + b.
type Linear[T tensor.Float, B tensor.Backend] = nn.Linear[T, B]

// LinearConfig configures NewLinear.
type LinearConfig = nn.LinearConfig

// NewLinear allocates "<name>.weight" and "<name>.bias".
func NewLinear[T tensor.Float, B tensor.Backend](name string, cfg LinearConfig, backend B) *Linear[T, B] {
	return nn.NewLinear[T](name, cfg, backend)
}

// SimpleRecurrent is a tanh recurrent layer over time-major sequences.
type SimpleRecurrent[T tensor.Float, B tensor.Backend] = nn.SimpleRecurrent[T, B]

// RecurrentConfig configures NewSimpleRecurrent.
type RecurrentConfig = nn.RecurrentConfig

// NewSimpleRecurrent allocates one recurrent layer.
func NewSimpleRecurrent[T tensor.Float, B tensor.Backend](name string, cfg RecurrentConfig, backend B) *SimpleRecurrent[T, B] {
	return nn.NewSimpleRecurrent[T](name, cfg, backend)
}

// RecurrentStack chains recurrent layers, optionally with skip connections.
type RecurrentStack[T tensor.Float, B tensor.Backend] = nn.RecurrentStack[T, B]

// StackConfig configures NewRecurrentStack.
type StackConfig = nn.StackConfig

// NewRecurrentStack allocates cfg.Layers layers of width cfg.StateDim.
func NewRecurrentStack[T tensor.Float, B tensor.Backend](name string, cfg StackConfig, backend B) *RecurrentStack[T, B] {
	return nn.NewRecurrentStack[T](name, cfg, backend)
}

// Loss

// CrossEntropyBits is the mean softmax cross-entropy of logits (N, V)
// against integer targets (N), in bits.
func CrossEntropyBits[T tensor.Float, B tensor.Backend](logits *tensor.Tensor[T, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[T, B] {
	return nn.CrossEntropyBits(logits, targets)
}

// Checkpoints

// Save writes params to a SafeTensors file with string metadata.
func Save[T tensor.Float, B tensor.Backend](path string, params *ParameterSet[T, B], metadata map[string]string) error {
	return nn.Save(path, params, metadata)
}

// Load reads a SafeTensors file into params and returns its metadata.
func Load[T tensor.Float, B tensor.Backend](path string, params *ParameterSet[T, B]) (map[string]string, error) {
	return nn.Load(path, params)
}
