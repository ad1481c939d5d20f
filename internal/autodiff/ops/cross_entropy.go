package ops

import (
	"fmt"
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// CrossEntropyOp represents the mean softmax cross-entropy loss.
//
// Forward:
//
//	L = mean_i(-log_softmax(logits_i)[targets_i])
//
// Backward:
//
//	∂L/∂logits = (softmax(logits) - onehot(targets)) * grad / N
//
// Shapes: logits [N, C], targets [N] int32, output scalar.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	output  *tensor.RawTensor
}

// NewCrossEntropyOp creates a new cross-entropy operation.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Inputs returns [logits]; targets carry no gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the scalar loss.
func (op *CrossEntropyOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the gradient with respect to the logits.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.logits, backend)
	scale := scalarValue(outputGrad) / float64(op.logits.Shape()[0])
	switch op.logits.DType() {
	case tensor.Float32:
		softmaxMinusOneHot[float32](grad, op.logits, op.targets.AsInt32(), scale)
	case tensor.Float64:
		softmaxMinusOneHot[float64](grad, op.logits, op.targets.AsInt32(), scale)
	default:
		panic(fmt.Sprintf("cross_entropy backward: unsupported dtype %s", op.logits.DType()))
	}
	return []*tensor.RawTensor{grad}
}

func softmaxMinusOneHot[T tensor.Float](grad, logits *tensor.RawTensor, targets []int32, scale float64) {
	dst := tensor.Values[T](grad)
	src := tensor.Values[T](logits)
	c := logits.Shape()[1]

	for i, target := range targets {
		row := src[i*c : (i+1)*c]
		out := dst[i*c : (i+1)*c]

		maxVal := math.Inf(-1)
		for _, v := range row {
			maxVal = math.Max(maxVal, float64(v))
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(float64(v) - maxVal)
		}
		for j, v := range row {
			p := math.Exp(float64(v)-maxVal) / sum
			if j == int(target) {
				p--
			}
			out[j] = T(p * scale)
		}
	}
}
