package ops

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// TanhOp represents y = tanh(x).
//
// Backward: d(tanh(x))/dx = 1 - tanh²(x) = 1 - y², computed from the saved
// output so x is not needed.
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

// Backward returns grad * (1 - y²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.output, backend)
	switch op.output.DType() {
	case tensor.Float32:
		tanhGrad[float32](grad, outputGrad, op.output)
	case tensor.Float64:
		tanhGrad[float64](grad, outputGrad, op.output)
	default:
		panic(fmt.Sprintf("tanh backward: unsupported dtype %s", op.output.DType()))
	}
	return []*tensor.RawTensor{grad}
}

func tanhGrad[T tensor.Float](dst, outputGrad, output *tensor.RawTensor) {
	d := tensor.Values[T](dst)
	g := tensor.Values[T](outputGrad)
	y := tensor.Values[T](output)
	for i := range d {
		d[i] = g[i] * (1 - y[i]*y[i])
	}
}

// Inputs returns [x].
func (op *TanhOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns tanh(x).
func (op *TanhOp) Output() *tensor.RawTensor { return op.output }
