package optim

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum and
// global norm clipping.
//
// Update rule, with c the clipping factor:
//
//	velocity = momentum * velocity + c * gradient
//	param = param - lr * velocity
//
// Without momentum the velocity is just c * gradient.
type SGD[T tensor.Float, B tensor.Backend] struct {
	params     *nn.ParameterSet[T, B]
	lr         float64
	momentum   float64
	clipNorm   float64
	lastNorm   float64
	velocities map[string][]T
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor in [0, 1) (default: 0)
	ClipNorm float64 // Maximum global gradient norm, 0 disables clipping
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], config SGDConfig) *SGD[T, B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[T, B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		clipNorm:   config.ClipNorm,
		velocities: make(map[string][]T),
	}
}

// Step performs a single optimization step.
func (s *SGD[T, B]) Step(grads Gradients) {
	s.lastNorm = GradNorm(s.params, grads)
	scale := ClipScale(s.lastNorm, s.clipNorm)

	for _, param := range s.params.All() {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		data := param.Tensor().Data()

		if s.momentum == 0 {
			for i, g := range grad {
				data[i] -= T(s.lr * scale * float64(g))
			}
			continue
		}

		velocity, ok := s.velocities[param.Name()]
		if !ok {
			velocity = make([]T, len(data))
			s.velocities[param.Name()] = velocity
		}
		for i, g := range grad {
			velocity[i] = T(s.momentum*float64(velocity[i]) + scale*float64(g))
			data[i] -= T(s.lr * float64(velocity[i]))
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[T, B]) ZeroGrad() {
	s.params.ZeroGrad()
}

// GetLR returns the current learning rate.
func (s *SGD[T, B]) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[T, B]) SetLR(lr float64) {
	s.lr = lr
}

// LastGradNorm returns the unclipped gradient norm of the last Step.
func (s *SGD[T, B]) LastGradNorm() float64 {
	return s.lastNorm
}

// StateDict returns the velocity buffers keyed "velocity.<param name>".
// Without momentum it is empty.
func (s *SGD[T, B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return state
	}
	for _, param := range s.params.All() {
		velocity, ok := s.velocities[param.Name()]
		if !ok {
			continue
		}
		state["velocity."+param.Name()] = rawFrom(velocity, param.Shape())
	}
	return state
}

// LoadStateDict restores velocity buffers written by StateDict.
// Parameters without a stored velocity start from zero.
func (s *SGD[T, B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}
	velocities := make(map[string][]T)
	for _, param := range s.params.All() {
		raw, ok := state["velocity."+param.Name()]
		if !ok {
			continue
		}
		values, err := valuesFrom[T](raw, param.Shape())
		if err != nil {
			return fmt.Errorf("velocity of %s: %w", param.Name(), err)
		}
		velocities[param.Name()] = values
	}
	s.velocities = velocities
	return nil
}

func rawFrom[T tensor.Float](values []T, shape tensor.Shape) *tensor.RawTensor {
	raw, err := tensor.RawFromSlice(append([]T(nil), values...), shape.Clone(), tensor.CPU)
	if err != nil {
		panic(fmt.Sprintf("optim: state buffer: %v", err))
	}
	return raw
}

func valuesFrom[T tensor.Float](raw *tensor.RawTensor, shape tensor.Shape) ([]T, error) {
	if !raw.Shape().Equal(shape) {
		return nil, fmt.Errorf("shape %v, want %v", raw.Shape(), shape)
	}
	if !raw.DType().IsFloat() {
		return nil, fmt.Errorf("dtype %s is not a float type", raw.DType())
	}
	values := make([]T, raw.NumElements())
	for i, v := range raw.Float64s() {
		values[i] = T(v)
	}
	return values, nil
}
