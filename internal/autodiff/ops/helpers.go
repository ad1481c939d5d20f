package ops

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// reduceBroadcast sums grad down to targetShape, undoing a forward broadcast.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result, err := tensor.NewRaw(targetShape, grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("reduceBroadcast: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		sumTo[float32](result, grad)
	case tensor.Float64:
		sumTo[float64](result, grad)
	default:
		panic(fmt.Sprintf("reduceBroadcast: unsupported dtype %s", grad.DType()))
	}
	return result
}

func sumTo[T tensor.Float](result, grad *tensor.RawTensor) {
	dst := tensor.Values[T](result)
	src := tensor.Values[T](grad)
	gShape, gStrides := grad.Shape(), grad.Strides()
	rShape, rStrides := result.Shape(), result.Strides()
	for i, v := range src {
		dst[tensor.BroadcastIndex(i, gShape, gStrides, rShape, rStrides)] += v
	}
}

// zerosLike allocates a zero tensor with x's shape and dtype.
func zerosLike(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return zeros(x.Shape(), x.DType(), backend)
}

func zeros(shape tensor.Shape, dtype tensor.DataType, backend tensor.Backend) *tensor.RawTensor {
	z, err := tensor.NewRaw(shape, dtype, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return z
}

// scalarValue reads a single-element float tensor as float64.
func scalarValue(x *tensor.RawTensor) float64 {
	switch x.DType() {
	case tensor.Float32:
		return float64(x.AsFloat32()[0])
	case tensor.Float64:
		return x.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("scalarValue: unsupported dtype %s", x.DType()))
	}
}
