package lm

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Node names recorded by Forward.
const (
	NodeFeatures        = "features"
	NodeTargets         = "targets"
	NodeHiddenState     = "hidden_state"
	NodePresoft         = "presoft"
	NodeLogits          = "logits"
	NodeFlatTargets     = "flat_targets"
	NodeCrossEntropy    = "cross_entropy"
	NodeRegularizedCost = "regularized_cost"
)

// LayerNodeName returns the per-layer name of base: base for layer 0,
// base_d for layer d > 0 ("inputs", "inputs_1", ...).
func LayerNodeName(base string, d int) string {
	if d == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, d)
}

// Outputs holds the nodes of one forward evaluation.
type Outputs[T tensor.Float, B tensor.Backend] struct {
	// Cost is "regularized_cost", the scalar to optimize.
	Cost *tensor.Tensor[T, B]

	// CrossEntropy is "cross_entropy", the mean bits per symbol.
	CrossEntropy *tensor.Tensor[T, B]

	// Logits is (batch*(time-context), vocab), batch-major.
	Logits *tensor.Tensor[T, B]

	// Hidden is the aggregated (time, batch, dim) state before the context
	// timesteps are dropped.
	Hidden *tensor.Tensor[T, B]

	// LayerInputs holds the time-major direct input of each layer; entries
	// of layers without a direct input are nil.
	LayerInputs []*tensor.Tensor[T, B]

	// LayerStates holds the (time, batch, StateDim) states of each layer.
	LayerStates []*tensor.Tensor[T, B]

	nodes map[string]*tensor.Tensor[T, B]
	names []string
	ids   map[string]*tensor.Tensor[int32, B]
}

func newOutputs[T tensor.Float, B tensor.Backend](layers int) *Outputs[T, B] {
	return &Outputs[T, B]{
		LayerInputs: make([]*tensor.Tensor[T, B], layers),
		nodes:       make(map[string]*tensor.Tensor[T, B]),
		ids:         make(map[string]*tensor.Tensor[int32, B]),
	}
}

func (o *Outputs[T, B]) set(name string, t *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	if _, ok := o.nodes[name]; !ok {
		o.names = append(o.names, name)
	}
	o.nodes[name] = t
	return t
}

func (o *Outputs[T, B]) setIDs(name string, t *tensor.Tensor[int32, B]) *tensor.Tensor[int32, B] {
	if _, ok := o.ids[name]; !ok {
		o.names = append(o.names, name)
	}
	o.ids[name] = t
	return t
}

// Node returns the float node called name.
func (o *Outputs[T, B]) Node(name string) (*tensor.Tensor[T, B], bool) {
	t, ok := o.nodes[name]
	return t, ok
}

// IDs returns the integer node called name: "features", "targets" or
// "flat_targets".
func (o *Outputs[T, B]) IDs(name string) (*tensor.Tensor[int32, B], bool) {
	t, ok := o.ids[name]
	return t, ok
}

// NodeNames returns every recorded node name in evaluation order.
func (o *Outputs[T, B]) NodeNames() []string {
	return append([]string(nil), o.names...)
}
