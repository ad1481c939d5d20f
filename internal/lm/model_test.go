package lm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

type CPU = *cpu.CPUBackend

func mustBatch[B tensor.Backend](t *testing.T, features, targets [][]int32, backend B) Batch[B] {
	t.Helper()
	batch, err := NewBatch(features, targets, backend)
	require.NoError(t, err)
	return batch
}

func TestBuild_ParameterNamesAndShapes(t *testing.T) {
	cfg := Config{Context: 0, StateDim: 4, Layers: 2, TimeLength: 3}
	model, err := Build[float32](10, cfg, cpu.New())
	require.NoError(t, err)

	params := model.Parameters()
	assert.Equal(t, []string{
		"embedding.weight",
		"recurrent.layer0.input_weight", "recurrent.layer0.recurrent_weight", "recurrent.layer0.bias",
		"recurrent.layer1.input_weight", "recurrent.layer1.recurrent_weight", "recurrent.layer1.bias",
		"output_layer.weight", "output_layer.bias",
	}, params.Names())

	shapes := map[string]tensor.Shape{
		"embedding.weight":                  {10, 4},
		"recurrent.layer1.input_weight":     {4, 4},
		"recurrent.layer1.recurrent_weight": {4, 4},
		"recurrent.layer1.bias":             {4},
		"output_layer.weight":               {4, 10},
		"output_layer.bias":                 {10},
	}
	for name, shape := range shapes {
		p, ok := params.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, shape, p.Shape(), name)
	}
	assert.Equal(t, []string{"features", "targets"}, model.Inputs())
}

func TestBuild_InvalidConfig(t *testing.T) {
	_, err := Build[float32](0, DefaultConfig(), cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Build[float32](10, Config{StateDim: 4, Layers: 0, TimeLength: 3}, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Build[float32](10, Config{Context: 3, StateDim: 4, Layers: 1, TimeLength: 3}, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_Initialization(t *testing.T) {
	cfg := Config{StateDim: 6, Layers: 2, SkipConnections: true, TimeLength: 4}
	model, err := Build[float64](50, cfg, cpu.New(), WithSeed(5))
	require.NoError(t, err)
	params := model.Parameters()

	for _, name := range []string{"recurrent.layer0.bias", "recurrent.layer1.bias", "output_layer.bias"} {
		p, _ := params.Get(name)
		for _, v := range p.Tensor().Data() {
			assert.Zero(t, v, name)
		}
	}

	// Square recurrent weights are orthogonal: each row has unit norm.
	w, _ := params.Get("recurrent.layer1.recurrent_weight")
	for r := 0; r < 6; r++ {
		var norm float64
		for c := 0; c < 6; c++ {
			norm += w.Tensor().At(r, c) * w.Tensor().At(r, c)
		}
		assert.InDelta(t, 1, norm, 1e-9)
	}

	emb, _ := params.Get("embedding.weight")
	assert.IsType(t, nn.IsotropicGaussian{}, emb.Initializer())
	assert.NotZero(t, emb.Tensor().At(0, 0))

	again, err := Build[float64](50, cfg, cpu.New(), WithSeed(5))
	require.NoError(t, err)
	for _, name := range params.Names() {
		a, _ := params.Get(name)
		b, _ := again.Parameters().Get(name)
		assert.Equal(t, a.Tensor().Data(), b.Tensor().Data(), "same seed must give the same %s", name)
	}
}

func TestForward_EndToEnd(t *testing.T) {
	for _, skip := range []bool{false, true} {
		backend := autodiff.New(cpu.New())
		cfg := Config{Context: 0, StateDim: 4, Layers: 2, SkipConnections: skip, TimeLength: 3}
		model, err := Build[float32](10, cfg, backend, WithSeed(1))
		require.NoError(t, err)

		out, err := model.Forward(mustBatch(t, [][]int32{{3, 1, 4}}, [][]int32{{1, 4, 1}}, backend))
		require.NoError(t, err)

		assert.Equal(t, tensor.Shape{3, 10}, out.Logits.Shape())
		assert.Empty(t, out.CrossEntropy.Shape())
		assert.GreaterOrEqual(t, out.CrossEntropy.Item(), float32(0))

		weight, _ := model.Parameters().Get("output_layer.weight")
		if skip {
			assert.Equal(t, tensor.Shape{8, 10}, weight.Shape())
			assert.Equal(t, tensor.Shape{3, 1, 8}, out.Hidden.Shape())
		} else {
			assert.Equal(t, tensor.Shape{4, 10}, weight.Shape())
			assert.Equal(t, tensor.Shape{3, 1, 4}, out.Hidden.Shape())
		}
	}
}

func TestForward_CostEqualsCrossEntropy(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := Config{Context: 2, StateDim: 5, Layers: 3, SkipConnections: true, TimeLength: 6}
	model, err := Build[float32](7, cfg, backend, WithSeed(9))
	require.NoError(t, err)

	batch := mustBatch(t,
		[][]int32{{0, 1, 2, 3, 4, 5}, {6, 5, 4, 3, 2, 1}},
		[][]int32{{1, 2, 3, 4, 5, 6}, {5, 4, 3, 2, 1, 0}},
		backend)
	out, err := model.Forward(batch)
	require.NoError(t, err)

	assert.NotSame(t, out.Cost, out.CrossEntropy, "cost and cross-entropy are distinct nodes")
	assert.InDelta(t, out.CrossEntropy.Item(), out.Cost.Item(), 1e-7)

	cost, ok := out.Node("regularized_cost")
	require.True(t, ok)
	assert.Same(t, out.Cost, cost)
	ce, ok := out.Node("cross_entropy")
	require.True(t, ok)
	assert.Same(t, out.CrossEntropy, ce)
}

// pairingModel predicts every position's own feature id with near certainty:
// the embedding and recurrent input weight pass one-hot ids through, and the
// output layer amplifies them.
func pairingModel(t *testing.T, backend CPU) *Model[float64, CPU] {
	t.Helper()
	cfg := Config{Context: 1, StateDim: 10, Layers: 1, TimeLength: 5}
	model, err := Build[float64](10, cfg, backend)
	require.NoError(t, err)

	params := model.Parameters()
	set := func(name string, diag float64) {
		p, ok := params.Get(name)
		require.True(t, ok, name)
		data := p.Tensor().Data()
		for i := range data {
			data[i] = 0
		}
		for i := 0; i < 10; i++ {
			p.Tensor().Set(diag, i, i)
		}
	}
	set("embedding.weight", 1)
	set("recurrent.layer0.input_weight", 3)
	set("recurrent.layer0.recurrent_weight", 0)
	set("output_layer.weight", 40)
	return model
}

func TestForward_FlattenOrderPairsLogitsWithTargets(t *testing.T) {
	backend := cpu.New()
	model := pairingModel(t, backend)

	// Every (batch, time) cell carries a distinct sentinel id.
	sentinels := [][]int32{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}}
	out, err := model.Forward(mustBatch(t, sentinels, sentinels, backend))
	require.NoError(t, err)

	flat, ok := out.IDs("flat_targets")
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3, 4, 6, 7, 8, 9}, flat.Data(), "batch-major outer, time inner")
	require.Equal(t, tensor.Shape{8, 10}, out.Logits.Shape())

	for row, target := range flat.Data() {
		best := 0
		for c := 1; c < 10; c++ {
			if out.Logits.At(row, c) > out.Logits.At(row, best) {
				best = c
			}
		}
		assert.Equal(t, int(target), best, "logit row %d", row)
	}
	assert.InDelta(t, 0, out.CrossEntropy.Item(), 1e-9, "every row matched")

	// Swapping the two target rows mismatches every position and costs the
	// full margin in bits.
	swapped := [][]int32{sentinels[1], sentinels[0]}
	out, err = model.Forward(mustBatch(t, sentinels, swapped, backend))
	require.NoError(t, err)
	margin := 40 * math.Tanh(3)
	assert.InDelta(t, margin/math.Ln2, out.CrossEntropy.Item(), 1e-6)

	// A single swapped cell costs the margin in one of eight rows.
	one := [][]int32{{0, 1, 2, 3, 4}, {5, 6, 7, 9, 8}}
	out, err = model.Forward(mustBatch(t, sentinels, one, backend))
	require.NoError(t, err)
	assert.InDelta(t, 2*margin/math.Ln2/8, out.CrossEntropy.Item(), 1e-6)
}

func TestForward_SkipDimensions(t *testing.T) {
	backend := cpu.New()
	batch := mustBatch(t, [][]int32{{1, 2, 3, 4}}, [][]int32{{2, 3, 4, 0}}, backend)

	for _, layers := range []int{1, 2, 4} {
		for _, skip := range []bool{false, true} {
			cfg := Config{Context: 1, StateDim: 3, Layers: layers, SkipConnections: skip, TimeLength: 4}
			model, err := Build[float64](5, cfg, backend, WithSeed(2))
			require.NoError(t, err)

			wantIn := 3
			if skip {
				wantIn = 3 * layers
			}
			assert.Equal(t, wantIn, model.OutputLayer().InFeatures(), "layers=%d skip=%v", layers, skip)

			out, err := model.Forward(batch)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{4, 1, wantIn}, out.Hidden.Shape())
			assert.Equal(t, tensor.Shape{3, 1, 5}, mustNode(t, out, "presoft").Shape())
			assert.Len(t, out.LayerStates, layers)
		}
	}
}

func TestForward_SingleLayerIgnoresSkip(t *testing.T) {
	backend := cpu.New()
	batch := mustBatch(t, [][]int32{{1, 2, 3}, {3, 2, 1}}, [][]int32{{2, 3, 0}, {2, 1, 0}}, backend)

	var values []float64
	for _, skip := range []bool{false, true} {
		cfg := Config{StateDim: 4, Layers: 1, SkipConnections: skip, TimeLength: 3}
		model, err := Build[float64](4, cfg, backend, WithSeed(8))
		require.NoError(t, err)
		out, err := model.Forward(batch)
		require.NoError(t, err)

		assert.Equal(t, out.LayerStates[0].Shape(), out.Hidden.Shape())
		assert.Equal(t, out.LayerStates[0].Data(), out.Hidden.Data())
		values = append(values, out.CrossEntropy.Item())
	}
	assert.Equal(t, values[0], values[1])
}

func TestForward_NodeNames(t *testing.T) {
	backend := cpu.New()
	batch := mustBatch(t, [][]int32{{1, 2}}, [][]int32{{2, 1}}, backend)

	skip, err := Build[float32](3, Config{StateDim: 2, Layers: 3, SkipConnections: true, TimeLength: 2}, backend)
	require.NoError(t, err)
	out, err := skip.Forward(batch)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"features", "targets",
		"inputs", "pre_rnn", "inputs_1", "pre_rnn_1", "inputs_2", "pre_rnn_2",
		"state", "state_1", "state_2",
		"hidden_state", "presoft", "logits", "flat_targets", "cross_entropy", "regularized_cost",
	}, out.NodeNames())
	for d, in := range out.LayerInputs {
		assert.Equal(t, tensor.Shape{2, 1, 2}, in.Shape(), "layer %d input is time-major", d)
	}

	plain, err := Build[float32](3, Config{StateDim: 2, Layers: 3, TimeLength: 2}, backend)
	require.NoError(t, err)
	out, err = plain.Forward(batch)
	require.NoError(t, err)
	_, ok := out.Node("inputs_1")
	assert.False(t, ok)
	assert.NotNil(t, out.LayerInputs[0])
	assert.Nil(t, out.LayerInputs[1])
	assert.Nil(t, out.LayerInputs[2])
}

func TestForward_LowMemoryMatchesFused(t *testing.T) {
	backend := cpu.New()
	batch := mustBatch(t,
		[][]int32{{0, 1, 2, 3, 4, 5}, {5, 4, 3, 2, 1, 0}},
		[][]int32{{1, 2, 3, 4, 5, 0}, {4, 3, 2, 1, 0, 5}},
		backend)

	for _, skip := range []bool{false, true} {
		cfg := Config{Context: 2, StateDim: 4, Layers: 3, SkipConnections: skip, TimeLength: 6}
		lowMem, err := Build[float64](6, cfg, backend, WithSeed(4))
		require.NoError(t, err)
		fused, err := Build[float64](6, cfg, backend, WithSeed(4), WithLowMemory(false))
		require.NoError(t, err)

		a, err := lowMem.Forward(batch)
		require.NoError(t, err)
		b, err := fused.Forward(batch)
		require.NoError(t, err)
		assert.InDeltaSlice(t, a.Logits.Data(), b.Logits.Data(), 1e-12, "skip=%v", skip)
		assert.InDelta(t, a.CrossEntropy.Item(), b.CrossEntropy.Item(), 1e-12)
	}
}

func TestForward_InvalidBatches(t *testing.T) {
	backend := cpu.New()
	model, err := Build[float32](10, Config{Context: 1, StateDim: 2, Layers: 1, TimeLength: 3}, backend)
	require.NoError(t, err)

	t.Run("FeatureOutOfVocab", func(t *testing.T) {
		_, err := model.Forward(mustBatch(t, [][]int32{{1, 10, 2}}, [][]int32{{1, 2, 3}}, backend))
		assert.ErrorIs(t, err, ErrTokenOutOfRange)
	})
	t.Run("NegativeTarget", func(t *testing.T) {
		_, err := model.Forward(mustBatch(t, [][]int32{{1, 2, 3}}, [][]int32{{1, -1, 3}}, backend))
		assert.ErrorIs(t, err, ErrTokenOutOfRange)
	})
	t.Run("ShapeMismatch", func(t *testing.T) {
		f, _ := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{1, 3}, backend)
		g, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, tensor.Shape{1, 4}, backend)
		_, err := model.Forward(Batch[CPU]{Features: f, Targets: g})
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
	t.Run("NoTimestepsAfterContext", func(t *testing.T) {
		_, err := model.Forward(mustBatch(t, [][]int32{{1}}, [][]int32{{2}}, backend))
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
	t.Run("RaggedRows", func(t *testing.T) {
		_, err := NewBatch([][]int32{{1, 2}, {1}}, [][]int32{{1, 2}, {1}}, backend)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestEmbedding_OutOfVocabPanics(t *testing.T) {
	backend := cpu.New()
	model, err := Build[float32](4, Config{StateDim: 2, Layers: 1, TimeLength: 2}, backend)
	require.NoError(t, err)

	ids, _ := tensor.FromSlice([]int32{0, 4}, tensor.Shape{1, 2}, backend)
	assert.Panics(t, func() { model.Embedding().Forward(ids) })
}

// Central differences on a float64 model agree with the tape gradients of
// the cost for every parameter, including the embedding table shared by all
// skip inputs.
func TestForward_GradientsMatchFiniteDifferences(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := Config{Context: 1, StateDim: 3, Layers: 2, SkipConnections: true, TimeLength: 4}
	model, err := Build[float64](5, cfg, backend,
		WithSeed(13),
		WithRecurrentInit(nn.Orthogonal{}, nn.IsotropicGaussian{Std: 0.1}),
		WithOutputInit(nn.IsotropicGaussian{Std: 0.5}, nn.IsotropicGaussian{Std: 0.1}),
	)
	require.NoError(t, err)
	batch := mustBatch(t,
		[][]int32{{0, 1, 2, 3}, {4, 3, 2, 1}},
		[][]int32{{1, 2, 3, 4}, {3, 2, 1, 0}},
		backend)

	backend.Tape().StartRecording()
	out, err := model.Forward(batch)
	require.NoError(t, err)
	grads := autodiff.Backward(out.Cost, backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	cost := func() float64 {
		out, err := model.Forward(batch)
		require.NoError(t, err)
		return out.Cost.Item()
	}

	const eps = 1e-6
	for _, p := range model.Parameters().All() {
		grad, ok := grads[p.Tensor().Raw()]
		require.True(t, ok, "no gradient for %s", p.Name())
		analytic := grad.AsFloat64()

		data := p.Tensor().Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + eps
			plus := cost()
			data[i] = orig - eps
			minus := cost()
			data[i] = orig

			numeric := (plus - minus) / (2 * eps)
			assert.InDelta(t, numeric, analytic[i], 1e-5, "%s[%d]", p.Name(), i)
		}
	}
}

func mustNode[T tensor.Float, B tensor.Backend](t *testing.T, out *Outputs[T, B], name string) *tensor.Tensor[T, B] {
	t.Helper()
	node, ok := out.Node(name)
	require.True(t, ok, name)
	return node
}
