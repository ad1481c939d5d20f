// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizers used to train the language model.
//
// # Overview
//
// This package contains:
//   - SGD: stochastic gradient descent with momentum
//   - Adam: adaptive moment estimation with bias correction
//   - GradNorm: global gradient norm, used for clipping
//
// Both optimizers update a parameter set in place from a gradient map
// produced by autodiff.Backward. Setting ClipNorm rescales the step when the
// global gradient norm exceeds it; the gradients themselves are never
// modified.
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	model, _ := lm.Build(vocab, lm.DefaultConfig(), backend)
//	opt := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-3})
//
//	backend.Tape().StartRecording()
//	out, _ := model.Forward(batch)
//	grads := autodiff.Backward(out.Cost, backend)
//	opt.Step(grads)
//
// Optimizer state round-trips through StateDict and LoadStateDict so training
// can resume from a checkpoint.
package optim
