package cpu

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Embedding gathers rows of weight [V, D] by int32 indices of any shape.
// Panics if an index falls outside [0, V).
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	requireFloat("embedding", weight)
	wShape := weight.Shape()
	if len(wShape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D [vocab, dim], got %v", wShape))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	outShape := append(indices.Shape().Clone(), wShape[1])
	result := cpu.alloc("embedding", outShape, weight.DType())

	if weight.DType() == tensor.Float32 {
		gatherRows[float32](result, weight, indices.AsInt32())
	} else {
		gatherRows[float64](result, weight, indices.AsInt32())
	}
	return result
}

func gatherRows[T tensor.Float](result, weight *tensor.RawTensor, ids []int32) {
	dst := tensor.Values[T](result)
	table := tensor.Values[T](weight)
	vocab, dim := weight.Shape()[0], weight.Shape()[1]

	for i, id := range ids {
		if id < 0 || int(id) >= vocab {
			panic(fmt.Sprintf("embedding: index %d out of range [0, %d) at position %d", id, vocab, i))
		}
		row := int(id) * dim
		copy(dst[i*dim:(i+1)*dim], table[row:row+dim])
	}
}
