package optim_test

import (
	"math"
	"testing"

	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/optim"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// newParams builds a set with one parameter per entry of values.
func newParams(t *testing.T, backend Backend, values map[string][]float32) *nn.ParameterSet[float32, Backend] {
	t.Helper()
	set, err := nn.NewParameterSet[float32, Backend]()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"w", "b"} {
		v, ok := values[name]
		if !ok {
			continue
		}
		p := nn.NewParameter[float32](name, tensor.Shape{len(v)}, nil, backend)
		copy(p.Tensor().Data(), v)
		if err := set.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	return set
}

func gradOf(t *testing.T, set *nn.ParameterSet[float32, Backend], name string, values ...float32) (*tensor.RawTensor, *tensor.RawTensor) {
	t.Helper()
	p, ok := set.Get(name)
	if !ok {
		t.Fatalf("no parameter %s", name)
	}
	g, err := tensor.RawFromSlice(values, tensor.Shape{len(values)}, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	return p.Tensor().Raw(), g
}

func value(set *nn.ParameterSet[float32, Backend], name string, i int) float64 {
	p, _ := set.Get(name)
	return float64(p.Tensor().Data()[i])
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {2}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 0.1})

	key, grad := gradOf(t, set, "w", 1)
	optimizer.Step(optim.Gradients{key: grad})

	// x_new = 2.0 - 0.1 * 1.0
	if got := value(set, "w", 0); !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want 1.9", got)
	}
}

// TestSGD_WithMomentum tests the velocity accumulation over two steps.
func TestSGD_WithMomentum(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	key, grad := gradOf(t, set, "w", 1)
	optimizer.Step(optim.Gradients{key: grad})
	// v = 1, x = 1 - 0.1
	if got := value(set, "w", 0); !floatEqual(got, 0.9, 1e-6) {
		t.Fatalf("first step: got %f, want 0.9", got)
	}

	optimizer.Step(optim.Gradients{key: grad})
	// v = 0.9 + 1 = 1.9, x = 0.9 - 0.19
	if got := value(set, "w", 0); !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("second step: got %f, want 0.71", got)
	}
}

func TestSGD_SkipsParametersWithoutGradient(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}, "b": {5}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 0.5})

	key, grad := gradOf(t, set, "w", 2)
	optimizer.Step(optim.Gradients{key: grad})

	if got := value(set, "b", 0); got != 5 {
		t.Errorf("b changed without a gradient: %f", got)
	}
	if got := value(set, "w", 0); !floatEqual(got, 0, 1e-6) {
		t.Errorf("w: got %f, want 0", got)
	}
}

func TestSGD_ClipNorm(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {0, 0}, "b": {0}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 1, ClipNorm: 1})

	// Global norm is sqrt(9 + 16 + 0) = 5, so every gradient is scaled by 1/5.
	wKey, wGrad := gradOf(t, set, "w", 3, 4)
	bKey, bGrad := gradOf(t, set, "b", 0)
	optimizer.Step(optim.Gradients{wKey: wGrad, bKey: bGrad})

	if !floatEqual(optimizer.LastGradNorm(), 5, 1e-6) {
		t.Errorf("LastGradNorm: got %f, want 5", optimizer.LastGradNorm())
	}
	if got := value(set, "w", 0); !floatEqual(got, -0.6, 1e-6) {
		t.Errorf("w[0]: got %f, want -0.6", got)
	}
	if got := value(set, "w", 1); !floatEqual(got, -0.8, 1e-6) {
		t.Errorf("w[1]: got %f, want -0.8", got)
	}
	if wGrad.AsFloat32()[0] != 3 {
		t.Error("gradients must not be modified")
	}
}

// Two parameters may share one gradient tensor; each must see it unscaled
// by the other's update.
func TestSGD_SharedGradientTensor(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}, "b": {1}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 0.1, ClipNorm: 1})

	wKey, shared := gradOf(t, set, "w", 2)
	bKey, _ := gradOf(t, set, "b", 0)
	optimizer.Step(optim.Gradients{wKey: shared, bKey: shared})

	// Norm sqrt(8), both updated by 0.1 * 2 / sqrt(8).
	want := 1 - 0.1*2/math.Sqrt(8)
	if !floatEqual(value(set, "w", 0), want, 1e-6) || !floatEqual(value(set, "b", 0), want, 1e-6) {
		t.Errorf("got w=%f b=%f, want both %f", value(set, "w", 0), value(set, "b", 0), want)
	}
}

func TestSGD_ZeroGrad(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}})
	p, _ := set.Get("w")
	p.SetGrad(p.Tensor().Clone())

	optim.NewSGD(set, optim.SGDConfig{}).ZeroGrad()
	if p.Grad() != nil {
		t.Error("ZeroGrad should clear the gradient")
	}
}

func TestSGD_GetSetLR(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{})
	if optimizer.GetLR() != 0.01 {
		t.Errorf("default LR: got %f, want 0.01", optimizer.GetLR())
	}
	optimizer.SetLR(0.5)
	if optimizer.GetLR() != 0.5 {
		t.Errorf("SetLR: got %f", optimizer.GetLR())
	}
}

func TestSGD_StateDictRoundTrip(t *testing.T) {
	backend := autodiff.New(cpu.New())
	set := newParams(t, backend, map[string][]float32{"w": {1, 2}})
	optimizer := optim.NewSGD(set, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	key, grad := gradOf(t, set, "w", 1, -1)
	optimizer.Step(optim.Gradients{key: grad})

	state := optimizer.StateDict()
	velocity, ok := state["velocity.w"]
	if !ok {
		t.Fatal("missing velocity.w")
	}

	restored := optim.NewSGD(set, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if err := restored.LoadStateDict(state); err != nil {
		t.Fatal(err)
	}
	if got := restored.StateDict()["velocity.w"].AsFloat32(); got[0] != velocity.AsFloat32()[0] || got[1] != velocity.AsFloat32()[1] {
		t.Errorf("velocity not restored: %v", got)
	}

	bad := map[string]*tensor.RawTensor{"velocity.w": tensor.MustNewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)}
	if err := restored.LoadStateDict(bad); err == nil {
		t.Error("expected a shape error")
	}
}

// TestAdam_SimpleUpdate checks that the first Adam step moves by lr.
func TestAdam_SimpleUpdate(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1}})
	optimizer := optim.NewAdam(set, optim.AdamConfig{LR: 0.1})

	key, grad := gradOf(t, set, "w", 0.5)
	optimizer.Step(optim.Gradients{key: grad})

	// With bias correction m_hat = g and v_hat = g², so the step is lr*sign(g).
	if got := value(set, "w", 0); !floatEqual(got, 0.9, 1e-5) {
		t.Errorf("Adam update: got %f, want 0.9", got)
	}
	if optimizer.GetTimestep() != 1 {
		t.Errorf("timestep: got %d, want 1", optimizer.GetTimestep())
	}
}

func TestAdam_StateDictRoundTrip(t *testing.T) {
	set := newParams(t, autodiff.New(cpu.New()), map[string][]float32{"w": {1, 2}})
	optimizer := optim.NewAdam(set, optim.AdamConfig{})
	key, grad := gradOf(t, set, "w", 0.3, -0.2)
	optimizer.Step(optim.Gradients{key: grad})
	optimizer.Step(optim.Gradients{key: grad})

	restored := optim.NewAdam(set, optim.AdamConfig{})
	if err := restored.LoadStateDict(optimizer.StateDict()); err != nil {
		t.Fatal(err)
	}
	if restored.GetTimestep() != 2 {
		t.Errorf("timestep: got %d, want 2", restored.GetTimestep())
	}

	// Both continue identically from the same state.
	before := value(set, "w", 0)
	optimizer.Step(optim.Gradients{key: grad})
	stepA := value(set, "w", 0) - before
	before = value(set, "w", 0)
	restored.Step(optim.Gradients{key: grad})
	stepB := value(set, "w", 0) - before
	if !floatEqual(stepA, stepB, 1e-7) {
		t.Errorf("restored optimizer diverged: %g vs %g", stepA, stepB)
	}
}

// TestConvergence_SimpleQuadratic minimizes (x - 3)² with gradients from
// the tape.
func TestConvergence_SimpleQuadratic(t *testing.T) {
	for _, name := range []string{"sgd", "adam"} {
		backend := autodiff.New(cpu.New())
		x := nn.NewParameter[float32]("x", tensor.Shape{1}, nil, backend)
		set, err := nn.NewParameterSet(x)
		if err != nil {
			t.Fatal(err)
		}

		var optimizer optim.Optimizer
		if name == "sgd" {
			optimizer = optim.NewSGD(set, optim.SGDConfig{LR: 0.1, Momentum: 0.5})
		} else {
			optimizer = optim.NewAdam(set, optim.AdamConfig{LR: 0.1})
		}

		for step := 0; step < 300; step++ {
			backend.Tape().StartRecording()
			diff := x.Tensor().AddScalar(-3)
			loss := diff.Mul(diff)
			grads := autodiff.Backward(loss, backend)
			backend.Tape().StopRecording()
			backend.Tape().Clear()

			optimizer.Step(grads)
		}

		if got := float64(x.Tensor().Data()[0]); !floatEqual(got, 3, 1e-2) {
			t.Errorf("%s: x = %f, want 3", name, got)
		}
	}
}
