package cpu

import (
	"fmt"
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/parallel"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

type binaryKind int

const (
	opAdd binaryKind = iota
	opSub
	opMul
)

func (k binaryKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	default:
		return "mul"
	}
}

func combine[T tensor.DType](kind binaryKind) func(x, y T) T {
	switch kind {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	default:
		return func(x, y T) T { return x * y }
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opAdd, a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opSub, a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMul, a, b)
}

func (cpu *CPUBackend) binary(kind binaryKind, a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType(kind.String(), a, b)
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", kind, err))
	}
	result := cpu.alloc(kind.String(), outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryKernel(result, a, b, combine[float32](kind), cpu.par)
	case tensor.Float64:
		binaryKernel(result, a, b, combine[float64](kind), cpu.par)
	case tensor.Int32:
		binaryKernel(result, a, b, combine[int32](kind), cpu.par)
	case tensor.Int64:
		binaryKernel(result, a, b, combine[int64](kind), cpu.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", kind, a.DType()))
	}
	return result
}

func binaryKernel[T tensor.DType](result, a, b *tensor.RawTensor, fn func(x, y T) T, par parallel.Config) {
	dst := tensor.Values[T](result)
	x := tensor.Values[T](a)
	y := tensor.Values[T](b)

	// Fast path: identical shapes need no index mapping.
	if a.Shape().Equal(b.Shape()) {
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = fn(x[i], y[i])
			}
		}, par)
		return
	}

	outShape := result.Shape()
	outStrides := result.Strides()
	aShape, aStrides := a.Shape(), a.Strides()
	bShape, bStrides := b.Shape(), b.Strides()
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			ai := tensor.BroadcastIndex(i, outShape, outStrides, aShape, aStrides)
			bi := tensor.BroadcastIndex(i, outShape, outStrides, bShape, bStrides)
			dst[i] = fn(x[ai], y[bi])
		}
	}, par)
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.alloc("mul_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		scalarKernel(result, x, func(v float32) float32 { return v * float32(scalar) }, cpu.par)
	case tensor.Float64:
		scalarKernel(result, x, func(v float64) float64 { return v * scalar }, cpu.par)
	case tensor.Int32:
		scalarKernel(result, x, func(v int32) int32 { return v * int32(scalar) }, cpu.par)
	case tensor.Int64:
		scalarKernel(result, x, func(v int64) int64 { return v * int64(scalar) }, cpu.par)
	default:
		panic(fmt.Sprintf("mul_scalar: unsupported dtype %s", x.DType()))
	}
	return result
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.alloc("add_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		scalarKernel(result, x, func(v float32) float32 { return v + float32(scalar) }, cpu.par)
	case tensor.Float64:
		scalarKernel(result, x, func(v float64) float64 { return v + scalar }, cpu.par)
	case tensor.Int32:
		scalarKernel(result, x, func(v int32) int32 { return v + int32(scalar) }, cpu.par)
	case tensor.Int64:
		scalarKernel(result, x, func(v int64) int64 { return v + int64(scalar) }, cpu.par)
	default:
		panic(fmt.Sprintf("add_scalar: unsupported dtype %s", x.DType()))
	}
	return result
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat("tanh", x)
	result := cpu.alloc("tanh", x.Shape(), x.DType())
	if x.DType() == tensor.Float32 {
		scalarKernel(result, x, func(v float32) float32 { return float32(math.Tanh(float64(v))) }, cpu.par)
	} else {
		scalarKernel(result, x, math.Tanh, cpu.par)
	}
	return result
}

func scalarKernel[T tensor.DType](result, x *tensor.RawTensor, fn func(T) T, par parallel.Config) {
	dst := tensor.Values[T](result)
	src := tensor.Values[T](x)
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = fn(src[i])
		}
	}, par)
}
