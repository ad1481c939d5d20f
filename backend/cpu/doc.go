// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// The backend implements the operations the recurrent language model needs:
//   - Elementwise arithmetic with broadcasting
//   - Matrix multiplication, batched over leading dimensions
//   - Reshape, Transpose, Narrow and Cat
//   - Embedding lookup and tanh
//   - Softmax cross-entropy over integer targets
//
// Float32 and float64 are supported. Large kernels are split across
// goroutines according to ParallelConfig.
//
// # Basic Usage
//
//	backend := cpu.New()
//	model, err := lm.Build(vocab, lm.DefaultConfig(), autodiff.New(backend))
package cpu
