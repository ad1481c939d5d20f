package cpu

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Reshape returns a view of t with a new shape (zero-copy).
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	view, err := t.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose permutes the dimensions of t.
// If axes is empty, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", ndim, len(axes)))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid permutation %v for %dD tensor", axes, ndim))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}
	result := cpu.alloc("transpose", newShape, t.DType())

	switch t.DType() {
	case tensor.Float32:
		transposeKernel[float32](result, t, axes)
	case tensor.Float64:
		transposeKernel[float64](result, t, axes)
	case tensor.Int32:
		transposeKernel[int32](result, t, axes)
	case tensor.Int64:
		transposeKernel[int64](result, t, axes)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return result
}

func transposeKernel[T tensor.DType](result, t *tensor.RawTensor, axes []int) {
	dst := tensor.Values[T](result)
	src := tensor.Values[T](t)
	outStrides := result.Strides()
	inStrides := t.Strides()

	// srcStride[i] is the source stride of output dimension i.
	srcStride := make([]int, len(axes))
	for i, ax := range axes {
		srcStride[i] = inStrides[ax]
	}

	for flat := range dst {
		rem := flat
		idx := 0
		for d, s := range outStrides {
			coord := rem / s
			rem %= s
			idx += coord * srcStride[d]
		}
		dst[flat] = src[idx]
	}
}

// Narrow returns the slice [start, start+length) of t along dim.
func (cpu *CPUBackend) Narrow(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("narrow: dim %d out of range for %dD tensor", dim, len(shape)))
	}
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	newShape := shape.Clone()
	newShape[dim] = length
	result := cpu.alloc("narrow", newShape, t.DType())

	switch t.DType() {
	case tensor.Float32:
		narrowKernel[float32](result, t, dim, start, length)
	case tensor.Float64:
		narrowKernel[float64](result, t, dim, start, length)
	case tensor.Int32:
		narrowKernel[int32](result, t, dim, start, length)
	case tensor.Int64:
		narrowKernel[int64](result, t, dim, start, length)
	default:
		panic(fmt.Sprintf("narrow: unsupported dtype %s", t.DType()))
	}
	return result
}

func narrowKernel[T tensor.DType](result, t *tensor.RawTensor, dim, start, length int) {
	dst := tensor.Values[T](result)
	src := tensor.Values[T](t)
	shape := t.Shape()
	outer := shape.Outer(dim)
	inner := shape.Inner(dim)
	size := shape[dim]

	block := length * inner
	for o := 0; o < outer; o++ {
		from := (o*size + start) * inner
		copy(dst[o*block:(o+1)*block], src[from:from+block])
	}
}

// Cat concatenates tensors along dim.
// Every other dimension must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}
	first := tensors[0]
	shape := first.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cat: dim %d out of range for %dD tensor", dim, len(shape)))
	}

	total := 0
	for i, t := range tensors {
		requireSameDType("cat", first, t)
		s := t.Shape()
		if len(s) != len(shape) {
			panic(fmt.Sprintf("cat: tensor %d has %d dims, want %d", i, len(s), len(shape)))
		}
		for d := range s {
			if d != dim && s[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v incompatible with %v along dim %d", i, s, shape, dim))
			}
		}
		total += s[dim]
	}

	newShape := shape.Clone()
	newShape[dim] = total
	result := cpu.alloc("cat", newShape, first.DType())

	switch first.DType() {
	case tensor.Float32:
		catKernel[float32](result, tensors, dim)
	case tensor.Float64:
		catKernel[float64](result, tensors, dim)
	case tensor.Int32:
		catKernel[int32](result, tensors, dim)
	case tensor.Int64:
		catKernel[int64](result, tensors, dim)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", first.DType()))
	}
	return result
}

func catKernel[T tensor.DType](result *tensor.RawTensor, tensors []*tensor.RawTensor, dim int) {
	dst := tensor.Values[T](result)
	outShape := result.Shape()
	outer := outShape.Outer(dim)
	inner := outShape.Inner(dim)
	rowLen := outShape[dim] * inner

	offset := 0
	for _, t := range tensors {
		src := tensor.Values[T](t)
		block := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(dst[o*rowLen+offset:o*rowLen+offset+block], src[o*block:(o+1)*block])
		}
		offset += block
	}
}
