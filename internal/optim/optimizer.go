// Package optim implements the optimizers that train the language model.
//
// This package provides:
//   - Optimizer interface: Step / ZeroGrad / learning rate access
//   - SGD: stochastic gradient descent with momentum
//   - Adam: adaptive moment estimation
//   - GradNorm / ClipScale: global gradient-norm clipping
//
// Optimizers work on an nn.ParameterSet and read gradients from the map
// returned by autodiff.Backward. Gradient tensors are never modified: the
// tape may hand the same gradient tensor to several inputs, so clipping is
// applied as a scale factor during the update.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR: 0.1, Momentum: 0.9, ClipNorm: 1,
//	})
//
//	backend.Tape().StartRecording()
//	out, _ := model.Forward(batch)
//	grads := autodiff.Backward(out.Cost, backend)
//	backend.Tape().StopRecording()
//	backend.Tape().Clear()
//
//	optimizer.Step(grads)
package optim

import (
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Gradients maps a parameter's RawTensor to its gradient, as returned by
// autodiff.Backward.
type Gradients = map[*tensor.RawTensor]*tensor.RawTensor

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient in
	// grads. Parameters missing from grads are left untouched.
	Step(grads Gradients)

	// ZeroGrad clears the Grad field of every parameter.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR changes the learning rate, for schedules.
	SetLR(lr float64)

	// LastGradNorm returns the global gradient norm seen by the last Step,
	// before clipping.
	LastGradNorm() float64
}

// getGradient returns the gradient of param as a []T, or nil if param did not
// take part in the computation.
func getGradient[T tensor.Float, B tensor.Backend](param *nn.Parameter[T, B], grads Gradients) []T {
	if param == nil {
		return nil
	}
	grad, ok := grads[param.Tensor().Raw()]
	if !ok || grad == nil {
		return nil
	}
	return tensor.Values[T](grad)
}

// GradNorm returns the L2 norm of all gradients of params taken together.
func GradNorm[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], grads Gradients) float64 {
	var sum float64
	for _, p := range params.All() {
		for _, g := range getGradient(p, grads) {
			sum += float64(g) * float64(g)
		}
	}
	return math.Sqrt(sum)
}

// ClipScale returns the factor that brings norm down to maxNorm.
// It is 1 when maxNorm <= 0 (clipping off) or norm is already within bounds.
func ClipScale(norm, maxNorm float64) float64 {
	if maxNorm <= 0 || norm <= maxNorm || norm == 0 {
		return 1
	}
	return maxNorm / norm
}
