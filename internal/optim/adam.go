package optim

import (
	"fmt"
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer with
// global norm clipping of the incoming gradients.
//
// Update rule, with g the clipped gradient:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[T tensor.Float, B tensor.Backend] struct {
	params   *nn.ParameterSet[T, B]
	lr       float64
	beta1    float64
	beta2    float64
	eps      float64
	clipNorm float64
	lastNorm float64
	t        int            // Timestep for bias correction
	m        map[string][]T // First moment estimates
	v        map[string][]T // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR       float64    // Learning rate (default: 0.001)
	Betas    [2]float64 // Running average coefficients (default: [0.9, 0.999])
	Eps      float64    // Term for numerical stability (default: 1e-8)
	ClipNorm float64    // Maximum global gradient norm, 0 disables clipping
}

// NewAdam creates an Adam optimizer over params, filling unset
// hyperparameters with their defaults.
func NewAdam[T tensor.Float, B tensor.Backend](params *nn.ParameterSet[T, B], config AdamConfig) *Adam[T, B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[T, B]{
		params:   params,
		lr:       config.LR,
		beta1:    config.Betas[0],
		beta2:    config.Betas[1],
		eps:      config.Eps,
		clipNorm: config.ClipNorm,
		m:        make(map[string][]T),
		v:        make(map[string][]T),
	}
}

// Step performs a single optimization step.
func (a *Adam[T, B]) Step(grads Gradients) {
	a.t++
	a.lastNorm = GradNorm(a.params, grads)
	scale := ClipScale(a.lastNorm, a.clipNorm)

	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params.All() {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		data := param.Tensor().Data()
		m := a.moment(a.m, param.Name(), len(data))
		v := a.moment(a.v, param.Name(), len(data))

		for i, raw := range grad {
			g := scale * float64(raw)
			m[i] = T(a.beta1*float64(m[i]) + (1-a.beta1)*g)
			v[i] = T(a.beta2*float64(v[i]) + (1-a.beta2)*g*g)

			mHat := float64(m[i]) / biasCorrection1
			vHat := float64(v[i]) / biasCorrection2
			data[i] -= T(a.lr * mHat / (math.Sqrt(vHat) + a.eps))
		}
	}
}

func (a *Adam[T, B]) moment(moments map[string][]T, name string, n int) []T {
	buf, ok := moments[name]
	if !ok {
		buf = make([]T, n)
		moments[name] = buf
	}
	return buf
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[T, B]) ZeroGrad() {
	a.params.ZeroGrad()
}

// GetLR returns the current learning rate.
func (a *Adam[T, B]) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[T, B]) SetLR(lr float64) {
	a.lr = lr
}

// LastGradNorm returns the unclipped gradient norm of the last Step.
func (a *Adam[T, B]) LastGradNorm() float64 {
	return a.lastNorm
}

// GetTimestep returns the number of steps taken.
func (a *Adam[T, B]) GetTimestep() int {
	return a.t
}

// StateDict returns the moment buffers keyed "m.<param name>" and
// "v.<param name>", and the timestep under "step".
func (a *Adam[T, B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for _, param := range a.params.All() {
		if m, ok := a.m[param.Name()]; ok {
			state["m."+param.Name()] = rawFrom(m, param.Shape())
			state["v."+param.Name()] = rawFrom(a.v[param.Name()], param.Shape())
		}
	}
	step, err := tensor.RawFromSlice([]int64{int64(a.t)}, tensor.Shape{1}, tensor.CPU)
	if err != nil {
		panic(fmt.Sprintf("optim: step buffer: %v", err))
	}
	state["step"] = step
	return state
}

// LoadStateDict restores moments and timestep written by StateDict.
func (a *Adam[T, B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	m := make(map[string][]T)
	v := make(map[string][]T)
	for _, param := range a.params.All() {
		rawM, okM := state["m."+param.Name()]
		rawV, okV := state["v."+param.Name()]
		if !okM || !okV {
			continue
		}
		var err error
		if m[param.Name()], err = valuesFrom[T](rawM, param.Shape()); err != nil {
			return fmt.Errorf("first moment of %s: %w", param.Name(), err)
		}
		if v[param.Name()], err = valuesFrom[T](rawV, param.Shape()); err != nil {
			return fmt.Errorf("second moment of %s: %w", param.Name(), err)
		}
	}

	t := 0
	if step, ok := state["step"]; ok {
		if step.DType() != tensor.Int64 || step.NumElements() != 1 {
			return fmt.Errorf("step: want one int64, got %s %v", step.DType(), step.Shape())
		}
		t = int(step.AsInt64()[0])
	}
	a.m, a.v, a.t = m, v, t
	return nil
}
