// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/optim"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Optimizer is the common interface of SGD and Adam.
type Optimizer = optim.Optimizer

// Gradients maps each parameter's raw tensor to its gradient.
type Gradients = optim.Gradients

// SGD (Stochastic Gradient Descent)

// SGD is stochastic gradient descent with optional momentum.
type SGD[T tensor.Float, B tensor.Backend] = optim.SGD[T, B]

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over params.
//
// Example:
//
//	model, _ := lm.Build(vocab, lm.DefaultConfig(), backend)
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.1,
//	    Momentum: 0.9,
//	    ClipNorm: 1,
//	})
func NewSGD[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], config SGDConfig) *SGD[T, B] {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam is the Adam optimizer with bias correction.
type Adam[T tensor.Float, B tensor.Backend] = optim.Adam[T, B]

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over params.
func NewAdam[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], config AdamConfig) *Adam[T, B] {
	return optim.NewAdam(params, config)
}

// GradNorm returns the global L2 norm of the gradients of params.
func GradNorm[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], grads Gradients) float64 {
	return optim.GradNorm(params, grads)
}
