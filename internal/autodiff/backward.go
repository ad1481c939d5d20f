package autodiff

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape implements BackwardCapable.
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward differentiates t with respect to every tensor on backend's tape.
// The seed gradient is all ones, so for a scalar loss the result holds
// dloss/dx for each recorded input x, keyed by its RawTensor.
//
// Panics when the tape is empty or t is not a float tensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("autodiff: Backward on an empty tape, start recording before the forward pass")
	}
	if dt := t.DType(); dt != tensor.Float32 && dt != tensor.Float64 {
		panic(fmt.Sprintf("autodiff: cannot differentiate a %s tensor", dt))
	}

	seed := tensor.Full(t.Shape(), T(1), backend)
	return tape.Backward(t.Raw(), seed.Raw(), backend)
}
