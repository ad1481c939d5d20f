// Package ops defines the differentiable operations recorded on the gradient tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and computes input gradients during the backward pass:
//   - AddOp, SubOp, MulOp: element-wise arithmetic with broadcasting
//   - MulScalarOp, AddScalarOp: arithmetic with a constant
//   - MatMulOp: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - ReshapeOp, TransposeOp, NarrowOp, CatOp: shape bookkeeping
//   - EmbeddingOp: scatter-add into the lookup table
//   - TanhOp: grad * (1 - y²)
//   - CrossEntropyOp: (softmax - onehot) / N
package ops

import "github.com/zbxzc35/RNN-Experiments/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per element of Inputs(); a nil entry means no
	// gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the differentiable input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
