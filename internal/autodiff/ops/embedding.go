package ops

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// EmbeddingOp represents an embedding lookup: output[i] = weight[indices[i]].
//
// Backward is a scatter-add: rows looked up more than once accumulate the
// gradients of every position that read them.
//
//	indices     = [0, 1, 0]
//	grad_output = [[1,2], [3,4], [5,6]]
//	grad_weight[0] = [1,2] + [5,6] = [6,8]
//	grad_weight[1] = [3,4]
type EmbeddingOp struct {
	weight  *tensor.RawTensor // [vocab, dim]
	indices *tensor.RawTensor // int32, any shape
	output  *tensor.RawTensor
}

// NewEmbeddingOp creates a new embedding operation.
func NewEmbeddingOp(weight, indices, output *tensor.RawTensor) *EmbeddingOp {
	return &EmbeddingOp{weight: weight, indices: indices, output: output}
}

// Inputs returns [weight]; integer indices carry no gradient.
func (op *EmbeddingOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.weight}
}

// Output returns the gathered embeddings.
func (op *EmbeddingOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward scatter-adds the output gradient into a zero weight gradient.
func (op *EmbeddingOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradWeight := zerosLike(op.weight, backend)
	switch op.weight.DType() {
	case tensor.Float32:
		scatterAdd[float32](gradWeight, outputGrad, op.indices.AsInt32())
	case tensor.Float64:
		scatterAdd[float64](gradWeight, outputGrad, op.indices.AsInt32())
	default:
		panic(fmt.Sprintf("embedding backward: unsupported dtype %s", op.weight.DType()))
	}
	return []*tensor.RawTensor{gradWeight}
}

func scatterAdd[T tensor.Float](gradWeight, outputGrad *tensor.RawTensor, ids []int32) {
	dst := tensor.Values[T](gradWeight)
	src := tensor.Values[T](outputGrad)
	dim := gradWeight.Shape()[1]
	for i, id := range ids {
		row := dst[int(id)*dim : (int(id)+1)*dim]
		for j, g := range src[i*dim : (i+1)*dim] {
			row[j] += g
		}
	}
}
