package lm

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Batch holds the two named model inputs, "features" and "targets", as
// (batch, time) token id matrices.
type Batch[B tensor.Backend] struct {
	Features *tensor.Tensor[int32, B]
	Targets  *tensor.Tensor[int32, B]
}

// NewBatch packs rows of token ids into a Batch on backend.
// All rows of both matrices must have the same length.
func NewBatch[B tensor.Backend](features, targets [][]int32, backend B) (Batch[B], error) {
	if len(features) == 0 || len(features) != len(targets) {
		return Batch[B]{}, fmt.Errorf("%w: %d feature rows, %d target rows", ErrShapeMismatch, len(features), len(targets))
	}
	steps := len(features[0])
	flatF := make([]int32, 0, len(features)*steps)
	flatT := make([]int32, 0, len(features)*steps)
	for i := range features {
		if len(features[i]) != steps || len(targets[i]) != steps {
			return Batch[B]{}, fmt.Errorf("%w: row %d has %d features and %d targets, want %d",
				ErrShapeMismatch, i, len(features[i]), len(targets[i]), steps)
		}
		flatF = append(flatF, features[i]...)
		flatT = append(flatT, targets[i]...)
	}

	shape := tensor.Shape{len(features), steps}
	f, err := tensor.FromSlice(flatF, shape, backend)
	if err != nil {
		return Batch[B]{}, fmt.Errorf("features: %w", err)
	}
	t, err := tensor.FromSlice(flatT, shape, backend)
	if err != nil {
		return Batch[B]{}, fmt.Errorf("targets: %w", err)
	}
	return Batch[B]{Features: f, Targets: t}, nil
}

// Size returns the batch size.
func (b Batch[B]) Size() int {
	return b.Features.Shape()[0]
}

// TimeLength returns the number of timesteps.
func (b Batch[B]) TimeLength() int {
	return b.Features.Shape()[1]
}
