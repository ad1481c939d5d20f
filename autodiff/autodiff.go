// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Backend decorates any tensor backend with a gradient tape. While the tape is
// recording, every operation is logged so Backward can return the gradient of
// a scalar with respect to each input that took part in it.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := model.Forward(batch)
//	grads := autodiff.Backward(out.Cost, backend)
package autodiff

import (
	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New wraps backend with a gradient tape.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates an empty, non-recording tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is implemented by backends that own a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward differentiates the scalar t and returns gradients keyed by raw
// input tensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
