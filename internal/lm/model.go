package lm

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Parameter name prefixes.
const (
	EmbeddingName = "embedding"
	RecurrentName = "recurrent"
	OutputName    = "output_layer"
)

// Model is a built language model graph.
type Model[T tensor.Float, B tensor.Backend] struct {
	cfg       Config
	vocabSize int
	backend   B
	lowMemory bool

	embedding *nn.Embedding[T, B]
	rnn       *nn.RecurrentStack[T, B]
	output    *nn.Linear[T, B]
	params    *nn.ParameterSet[T, B]
}

// Build validates cfg, wires the embedding, the recurrent stack and the
// output projection on backend, and initializes every parameter in place.
//
// Parameters are allocated in the order embedding, recurrent layers bottom
// first, output layer, and drawn from the option random source in that
// order, so a fixed seed reproduces the same model.
func Build[T tensor.Float, B tensor.Backend](vocabSize int, cfg Config, backend B, opts ...Option) (*Model[T, B], error) {
	if vocabSize < 1 {
		return nil, fmt.Errorf("%w: vocab size must be >= 1, got %d", ErrInvalidConfig, vocabSize)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.WithFields(logrus.Fields{
		"vocab":            vocabSize,
		"context":          cfg.Context,
		"state_dim":        cfg.StateDim,
		"layers":           cfg.Layers,
		"skip_connections": cfg.SkipConnections,
		"time_length":      cfg.TimeLength,
		"backend":          backend.Name(),
	})
	log.Info("building model")

	m := &Model[T, B]{
		cfg:       cfg,
		vocabSize: vocabSize,
		backend:   backend,
		lowMemory: o.lowMemory,
	}
	m.embedding = nn.NewEmbedding[T](EmbeddingName, nn.EmbeddingConfig{
		NumEmbeddings: vocabSize,
		Dim:           cfg.StateDim,
		Init:          o.embeddingInit,
	}, backend)
	m.rnn = nn.NewRecurrentStack[T](RecurrentName, nn.StackConfig{
		Layers:          cfg.Layers,
		StateDim:        cfg.StateDim,
		SkipConnections: cfg.SkipConnections,
		WeightInit:      o.rnnWeightInit,
		BiasInit:        o.rnnBiasInit,
	}, backend)
	m.output = nn.NewLinear[T](OutputName, nn.LinearConfig{
		InFeatures:  cfg.OutputInputDim(),
		OutFeatures: vocabSize,
		WeightInit:  o.outWeightInit,
		BiasInit:    o.outBiasInit,
	}, backend)

	params, err := nn.NewParameterSet(m.collectParameters()...)
	if err != nil {
		return nil, fmt.Errorf("collect parameters: %w", err)
	}
	m.params = params

	log.Info("initializing parameters")
	m.Initialize(o.src)
	log.WithField("parameters", params.NumElements()).Debug("model ready")

	return m, nil
}

func (m *Model[T, B]) collectParameters() []*nn.Parameter[T, B] {
	var params []*nn.Parameter[T, B]
	params = append(params, m.embedding.Parameters()...)
	params = append(params, m.rnn.Parameters()...)
	params = append(params, m.output.Parameters()...)
	return params
}

// Initialize redraws every parameter in place from src.
func (m *Model[T, B]) Initialize(src rand.Source) {
	m.embedding.Initialize(src)
	m.rnn.Initialize(src)
	m.output.Initialize(src)
}

// Forward evaluates the graph on batch.
//
// Features and targets must both be (batch, time) with time > Context and
// every id in [0, vocab). On an autodiff backend that is recording, the
// returned Cost can be differentiated with respect to Parameters.
func (m *Model[T, B]) Forward(batch Batch[B]) (*Outputs[T, B], error) {
	if err := m.checkBatch(batch); err != nil {
		return nil, err
	}
	size, steps := batch.Size(), batch.TimeLength()
	kept := steps - m.cfg.Context

	out := newOutputs[T, B](m.cfg.Layers)
	out.setIDs(NodeFeatures, batch.Features)
	out.setIDs(NodeTargets, batch.Targets)

	// Every layer with a direct input gets its own lookup of the shared
	// table, moved to time-major order.
	for d := range out.LayerInputs {
		if !m.rnn.ReceivesDirectInput(d) {
			continue
		}
		embedded := out.set(LayerNodeName("inputs", d), m.embedding.Forward(batch.Features))
		out.LayerInputs[d] = out.set(LayerNodeName("pre_rnn", d), embedded.Transpose(1, 0, 2))
	}

	out.LayerStates = m.rnn.Apply(out.LayerInputs, m.lowMemory)
	for d, states := range out.LayerStates {
		out.set(LayerNodeName("state", d), states)
	}

	var hidden *tensor.Tensor[T, B]
	switch {
	case len(out.LayerStates) == 1:
		hidden = out.LayerStates[0]
	case m.cfg.SkipConnections:
		hidden = tensor.Cat(out.LayerStates, 2)
	default:
		hidden = out.LayerStates[len(out.LayerStates)-1]
	}
	out.Hidden = out.set(NodeHiddenState, hidden)

	presoft := out.set(NodePresoft, m.output.Forward(hidden.Narrow(0, m.cfg.Context, kept)))
	out.Logits = out.set(NodeLogits, presoft.Transpose(1, 0, 2).Reshape(size*kept, m.vocabSize))
	targets := out.setIDs(NodeFlatTargets, batch.Targets.Narrow(1, m.cfg.Context, kept).Reshape(size*kept))

	out.CrossEntropy = out.set(NodeCrossEntropy, nn.CrossEntropyBits(out.Logits, targets))
	// log(1) keeps the optimized cost a node distinct from the monitored one.
	out.Cost = out.set(NodeRegularizedCost, out.CrossEntropy.AddScalar(math.Log(1)))

	return out, nil
}

func (m *Model[T, B]) checkBatch(batch Batch[B]) error {
	if batch.Features == nil || batch.Targets == nil {
		return fmt.Errorf("%w: features and targets are required", ErrShapeMismatch)
	}
	fs, ts := batch.Features.Shape(), batch.Targets.Shape()
	if len(fs) != 2 || !fs.Equal(ts) {
		return fmt.Errorf("%w: features %v, targets %v, want equal (batch, time)", ErrShapeMismatch, fs, ts)
	}
	if fs[0] < 1 || fs[1] <= m.cfg.Context {
		return fmt.Errorf("%w: batch %v leaves no timesteps after context %d", ErrShapeMismatch, fs, m.cfg.Context)
	}
	if err := m.checkIDs(NodeFeatures, batch.Features); err != nil {
		return err
	}
	return m.checkIDs(NodeTargets, batch.Targets)
}

func (m *Model[T, B]) checkIDs(name string, ids *tensor.Tensor[int32, B]) error {
	for i, id := range ids.Data() {
		if id < 0 || int(id) >= m.vocabSize {
			return fmt.Errorf("%w: %s[%d] = %d, vocab size %d", ErrTokenOutOfRange, name, i, id, m.vocabSize)
		}
	}
	return nil
}

// Inputs returns the names of the model inputs.
func (m *Model[T, B]) Inputs() []string {
	return []string{NodeFeatures, NodeTargets}
}

// Parameters returns the trainable parameters keyed by stable name.
func (m *Model[T, B]) Parameters() *nn.ParameterSet[T, B] {
	return m.params
}

// Config returns the architecture the model was built with.
func (m *Model[T, B]) Config() Config {
	return m.cfg
}

// VocabSize returns the vocabulary size.
func (m *Model[T, B]) VocabSize() int {
	return m.vocabSize
}

// Backend returns the backend the parameters live on.
func (m *Model[T, B]) Backend() B {
	return m.backend
}

// Embedding returns the token lookup table.
func (m *Model[T, B]) Embedding() *nn.Embedding[T, B] {
	return m.embedding
}

// Recurrent returns the recurrent stack.
func (m *Model[T, B]) Recurrent() *nn.RecurrentStack[T, B] {
	return m.rnn
}

// OutputLayer returns the output projection.
func (m *Model[T, B]) OutputLayer() *nn.Linear[T, B] {
	return m.output
}
