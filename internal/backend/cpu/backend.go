// Package cpu implements the CPU backend with BLAS-backed matrix multiplication.
package cpu

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/parallel"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Kernels never modify their inputs; every operation allocates its result,
// except Reshape which returns a view sharing storage.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// WithParallel returns a copy of the backend using cfg for element-wise kernels.
func (cpu *CPUBackend) WithParallel(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{device: cpu.device, par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

func requireSameDType(op string, a, b *tensor.RawTensor) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}

func requireFloat(op string, x *tensor.RawTensor) {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("%s: requires a float tensor, got %s", op, x.DType()))
	}
}
