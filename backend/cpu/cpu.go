// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/zbxzc35/RNN-Experiments/internal/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/internal/parallel"
	"github.com/zbxzc35/RNN-Experiments/tensor"
)

// Backend is the pure Go CPU backend.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls how large kernels are split across goroutines.
type ParallelConfig = parallel.Config

// New creates a CPU backend with the default parallel configuration.
func New() *Backend {
	return internalcpu.New()
}

// NewWithParallel creates a CPU backend with an explicit parallel configuration.
func NewWithParallel(cfg ParallelConfig) *Backend {
	return internalcpu.New().WithParallel(cfg)
}

// DefaultParallelConfig returns the configuration New uses.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
