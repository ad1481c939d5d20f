// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package lm builds the computation graph of a recurrent neural network
// language model.
//
// # Overview
//
// A model embeds a (batch, time) matrix of token ids, runs it through a stack
// of tanh recurrent layers, projects the hidden state onto the vocabulary
// and reports the cross-entropy in bits of predicting each target id. The
// first Context timesteps of every sequence warm the state up and are not
// scored.
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	model, err := lm.Build[float32](vocab, lm.DefaultConfig(), backend,
//	    lm.WithSeed(42),
//	)
//	batch, err := lm.NewBatch(features, targets, backend)
//	out, err := model.Forward(batch)
//	fmt.Println(out.CrossEntropy.Item(), "bits per symbol")
//
// Every intermediate tensor is reachable by name through Outputs.Node, for
// example "hidden_state", "logits" or "pre_rnn_1".
package lm

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/lm"
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Errors returned by Build, Config.Validate and Model.Forward.
var (
	ErrInvalidConfig   = lm.ErrInvalidConfig
	ErrShapeMismatch   = lm.ErrShapeMismatch
	ErrTokenOutOfRange = lm.ErrTokenOutOfRange
)

// Config describes the model architecture.
type Config = lm.Config

// DefaultConfig returns a one layer model with 256 units, 10 context steps
// and sequences of 100 steps.
func DefaultConfig() Config {
	return lm.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return lm.LoadConfig(path)
}

// Model is a built language model.
type Model[T tensor.Float, B tensor.Backend] = lm.Model[T, B]

// Build wires and initializes a model for vocabSize symbols on backend.
func Build[T tensor.Float, B tensor.Backend](vocabSize int, cfg Config, backend B, opts ...Option) (*Model[T, B], error) {
	return lm.Build[T](vocabSize, cfg, backend, opts...)
}

// Batch is one (batch, time) matrix of features and its targets.
type Batch[B tensor.Backend] = lm.Batch[B]

// NewBatch copies equally sized rows of ids onto backend.
func NewBatch[B tensor.Backend](features, targets [][]int32, backend B) (Batch[B], error) {
	return lm.NewBatch(features, targets, backend)
}

// Outputs holds the named nodes of one forward evaluation.
type Outputs[T tensor.Float, B tensor.Backend] = lm.Outputs[T, B]

// Node names recorded by Forward.
const (
	NodeFeatures        = lm.NodeFeatures
	NodeTargets         = lm.NodeTargets
	NodeHiddenState     = lm.NodeHiddenState
	NodePresoft         = lm.NodePresoft
	NodeLogits          = lm.NodeLogits
	NodeFlatTargets     = lm.NodeFlatTargets
	NodeCrossEntropy    = lm.NodeCrossEntropy
	NodeRegularizedCost = lm.NodeRegularizedCost
)

// LayerNodeName returns base for layer 0 and base_d for deeper layers.
func LayerNodeName(base string, d int) string {
	return lm.LayerNodeName(base, d)
}

// Options

// Option customizes Build.
type Option = lm.Option

// WithLogger logs construction to logger.
func WithLogger(logger *logrus.Logger) Option { return lm.WithLogger(logger) }

// WithSeed draws initial parameters from a source seeded with seed.
func WithSeed(seed uint64) Option { return lm.WithSeed(seed) }

// WithSource draws initial parameters from src.
func WithSource(src rand.Source) Option { return lm.WithSource(src) }

// WithLowMemory selects layer-at-a-time (true) or fused time-major (false)
// evaluation of the recurrent stack. Both produce the same values.
func WithLowMemory(lowMemory bool) Option { return lm.WithLowMemory(lowMemory) }

// WithEmbeddingInit overrides the embedding initializer.
func WithEmbeddingInit(init nn.Initializer) Option { return lm.WithEmbeddingInit(init) }

// WithRecurrentInit overrides the recurrent weight and bias initializers.
func WithRecurrentInit(weight, bias nn.Initializer) Option {
	return lm.WithRecurrentInit(weight, bias)
}

// WithOutputInit overrides the output layer weight and bias initializers.
func WithOutputInit(weight, bias nn.Initializer) Option {
	return lm.WithOutputInit(weight, bias)
}
