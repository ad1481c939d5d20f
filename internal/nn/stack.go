package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// StackConfig describes a stack of SimpleRecurrent layers of equal width.
type StackConfig struct {
	Layers          int
	StateDim        int
	SkipConnections bool
	WeightInit      Initializer
	BiasInit        Initializer
}

// RecurrentStack chains SimpleRecurrent layers.
//
// Layer 0 reads its direct input. Layer d > 0 reads the states of layer d-1,
// plus its own direct input when skip connections are enabled:
//
//	in[0][t] = x[0][t]
//	in[d][t] = h[d-1][t]             (no skip)
//	in[d][t] = h[d-1][t] + x[d][t]   (skip)
type RecurrentStack[T tensor.Float, B tensor.Backend] struct {
	layers []*SimpleRecurrent[T, B]
	cfg    StackConfig
}

// NewRecurrentStack allocates layers named "<name>.layer0", "<name>.layer1", ...
func NewRecurrentStack[T tensor.Float, B tensor.Backend](name string, cfg StackConfig, backend B) *RecurrentStack[T, B] {
	layers := make([]*SimpleRecurrent[T, B], cfg.Layers)
	for d := range layers {
		layers[d] = NewSimpleRecurrent[T](fmt.Sprintf("%s.layer%d", name, d), RecurrentConfig{
			InputDim:   cfg.StateDim,
			StateDim:   cfg.StateDim,
			WeightInit: cfg.WeightInit,
			BiasInit:   cfg.BiasInit,
		}, backend)
	}
	return &RecurrentStack[T, B]{layers: layers, cfg: cfg}
}

// ReceivesDirectInput reports whether layer d reads a direct input.
func (s *RecurrentStack[T, B]) ReceivesDirectInput(d int) bool {
	return d == 0 || s.cfg.SkipConnections
}

// Apply runs the stack over time-major sequences and returns one
// (time, batch, StateDim) state sequence per layer.
//
// direct holds one entry per layer; entry d must be non-nil exactly when
// ReceivesDirectInput(d). With lowMemory each layer is scanned over the
// whole sequence before the next starts, so only the previous layer's
// output is live; otherwise all layers advance together one timestep at a
// time. Both orders compute the same values.
func (s *RecurrentStack[T, B]) Apply(direct []*tensor.Tensor[T, B], lowMemory bool) []*tensor.Tensor[T, B] {
	s.checkInputs(direct)
	if lowMemory {
		return s.applyLayerMajor(direct)
	}
	return s.applyTimeMajor(direct)
}

func (s *RecurrentStack[T, B]) checkInputs(direct []*tensor.Tensor[T, B]) {
	if len(direct) != len(s.layers) {
		panic(fmt.Sprintf("RecurrentStack: got %d direct inputs for %d layers", len(direct), len(s.layers)))
	}
	shape := direct[0].Shape()
	for d, x := range direct {
		if (x != nil) != s.ReceivesDirectInput(d) {
			panic(fmt.Sprintf("RecurrentStack: layer %d direct input presence is %v, want %v", d, x != nil, s.ReceivesDirectInput(d)))
		}
		if x != nil && !x.Shape().Equal(shape) {
			panic(fmt.Sprintf("RecurrentStack: layer %d input shape %v differs from %v", d, x.Shape(), shape))
		}
	}
}

func (s *RecurrentStack[T, B]) applyLayerMajor(direct []*tensor.Tensor[T, B]) []*tensor.Tensor[T, B] {
	outputs := make([]*tensor.Tensor[T, B], len(s.layers))
	for d, layer := range s.layers {
		in := direct[0]
		if d > 0 {
			in = outputs[d-1]
			if direct[d] != nil {
				in = in.Add(direct[d])
			}
		}
		outputs[d] = layer.Apply(in)
	}
	return outputs
}

func (s *RecurrentStack[T, B]) applyTimeMajor(direct []*tensor.Tensor[T, B]) []*tensor.Tensor[T, B] {
	shape := direct[0].Shape()
	steps, batch := shape[0], shape[1]

	states := make([]*tensor.Tensor[T, B], len(s.layers))
	history := make([][]*tensor.Tensor[T, B], len(s.layers))
	for d := range history {
		history[d] = make([]*tensor.Tensor[T, B], steps)
	}

	for t := 0; t < steps; t++ {
		for d, layer := range s.layers {
			var x *tensor.Tensor[T, B]
			if d == 0 {
				x = timestep(direct[0], t, batch)
			} else {
				x = states[d-1]
				if direct[d] != nil {
					x = x.Add(timestep(direct[d], t, batch))
				}
			}
			states[d] = layer.Step(x, states[d])
			history[d][t] = states[d].Reshape(1, batch, s.cfg.StateDim)
		}
	}

	outputs := make([]*tensor.Tensor[T, B], len(s.layers))
	for d := range outputs {
		outputs[d] = tensor.Cat(history[d], 0)
	}
	return outputs
}

// Layers returns the recurrent layers, bottom first.
func (s *RecurrentStack[T, B]) Layers() []*SimpleRecurrent[T, B] {
	return s.layers
}

// Parameters returns every layer's parameters, bottom layer first.
func (s *RecurrentStack[T, B]) Parameters() []*Parameter[T, B] {
	params := make([]*Parameter[T, B], 0, 3*len(s.layers))
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Initialize draws every layer's parameters, bottom layer first.
func (s *RecurrentStack[T, B]) Initialize(src rand.Source) {
	initializeAll(s.Parameters(), src)
}
