package nn

import (
	"fmt"
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// CrossEntropyBits returns the mean softmax cross-entropy of logits (N, C)
// against int32 targets (N), measured in bits:
//
//	mean_i(-log2 softmax(logits_i)[targets_i])
//
// The result is a scalar tensor.
func CrossEntropyBits[T tensor.Float, B tensor.Backend](logits *tensor.Tensor[T, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[T, B] {
	ls, ts := logits.Shape(), targets.Shape()
	if len(ls) != 2 || len(ts) != 1 || ls[0] != ts[0] {
		panic(fmt.Sprintf("CrossEntropyBits: logits %v and targets %v do not pair up row by row", ls, ts))
	}
	return tensor.CrossEntropy(logits, targets).Scale(1 / math.Ln2)
}
