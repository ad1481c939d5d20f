package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// RecurrentConfig describes one simple recurrent layer.
type RecurrentConfig struct {
	InputDim   int
	StateDim   int
	WeightInit Initializer // input and recurrent weights
	BiasInit   Initializer
}

// SimpleRecurrent is a tanh recurrent layer:
//
//	h[t] = tanh(x[t] @ W_in + h[t-1] @ W_rec + b),  h[-1] = 0
//
// Sequences are time-major: (time, batch, features).
type SimpleRecurrent[T tensor.Float, B tensor.Backend] struct {
	InputWeight     *Parameter[T, B] // [InputDim, StateDim]
	RecurrentWeight *Parameter[T, B] // [StateDim, StateDim]
	Bias            *Parameter[T, B] // [StateDim]
	cfg             RecurrentConfig
}

// NewSimpleRecurrent allocates "<name>.input_weight", "<name>.recurrent_weight"
// and "<name>.bias".
func NewSimpleRecurrent[T tensor.Float, B tensor.Backend](name string, cfg RecurrentConfig, backend B) *SimpleRecurrent[T, B] {
	return &SimpleRecurrent[T, B]{
		InputWeight:     NewParameter[T](name+".input_weight", tensor.Shape{cfg.InputDim, cfg.StateDim}, cfg.WeightInit, backend),
		RecurrentWeight: NewParameter[T](name+".recurrent_weight", tensor.Shape{cfg.StateDim, cfg.StateDim}, cfg.WeightInit, backend),
		Bias:            NewParameter[T](name+".bias", tensor.Shape{cfg.StateDim}, cfg.BiasInit, backend),
		cfg:             cfg,
	}
}

// Step advances one timestep. x is (batch, InputDim); prev is (batch,
// StateDim) or nil for the zero initial state.
func (r *SimpleRecurrent[T, B]) Step(x, prev *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	pre := x.MatMul(r.InputWeight.Tensor())
	if prev != nil {
		pre = pre.Add(prev.MatMul(r.RecurrentWeight.Tensor()))
	}
	return pre.Add(r.Bias.Tensor()).Tanh()
}

// Apply scans the layer over a whole (time, batch, InputDim) sequence and
// returns the (time, batch, StateDim) states.
func (r *SimpleRecurrent[T, B]) Apply(seq *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	steps, batch := r.checkSequence(seq)
	states := make([]*tensor.Tensor[T, B], steps)
	var h *tensor.Tensor[T, B]
	for t := 0; t < steps; t++ {
		h = r.Step(timestep(seq, t, batch), h)
		states[t] = h.Reshape(1, batch, r.cfg.StateDim)
	}
	return tensor.Cat(states, 0)
}

func (r *SimpleRecurrent[T, B]) checkSequence(seq *tensor.Tensor[T, B]) (steps, batch int) {
	shape := seq.Shape()
	if len(shape) != 3 || shape[2] != r.cfg.InputDim {
		panic(fmt.Sprintf("SimpleRecurrent: expected sequence (time, batch, %d), got %v", r.cfg.InputDim, shape))
	}
	return shape[0], shape[1]
}

// timestep extracts seq[t] as a (batch, features) matrix.
func timestep[T tensor.Float, B tensor.Backend](seq *tensor.Tensor[T, B], t, batch int) *tensor.Tensor[T, B] {
	return seq.Narrow(0, t, 1).Reshape(batch, seq.Shape()[2])
}

// Parameters returns [InputWeight, RecurrentWeight, Bias].
func (r *SimpleRecurrent[T, B]) Parameters() []*Parameter[T, B] {
	return []*Parameter[T, B]{r.InputWeight, r.RecurrentWeight, r.Bias}
}

// Initialize draws all three parameters from their initializers.
func (r *SimpleRecurrent[T, B]) Initialize(src rand.Source) {
	initializeAll(r.Parameters(), src)
}

// StateDim returns the hidden state size.
func (r *SimpleRecurrent[T, B]) StateDim() int {
	return r.cfg.StateDim
}
