package autodiff

import (
	"github.com/zbxzc35/RNN-Experiments/internal/autodiff/ops"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// GradientTape is the ordered log of operations executed while recording.
//
// One training step records a whole forward evaluation of the model, walks
// the log once in reverse and is then cleared for the next step.
type GradientTape struct {
	log []ops.Operation
	on  bool
}

// NewGradientTape returns an empty tape that is not recording.
func NewGradientTape() *GradientTape {
	return &GradientTape{log: make([]ops.Operation, 0, 256)}
}

// StartRecording makes Record append operations.
func (t *GradientTape) StartRecording() { t.on = true }

// StopRecording makes Record a no-op.
func (t *GradientTape) StopRecording() { t.on = false }

// IsRecording reports whether Record appends.
func (t *GradientTape) IsRecording() bool { return t.on }

// Record appends op while recording.
func (t *GradientTape) Record(op ops.Operation) {
	if !t.on {
		return
	}
	t.log = append(t.log, op)
}

// Clear drops every recorded operation, keeping the recording state.
func (t *GradientTape) Clear() {
	clear(t.log)
	t.log = t.log[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.log)
}

// Backward propagates seed, the gradient of output, back through the log.
//
// Operations whose output has no gradient (recorded after output, or off
// every path to it, such as the integer target reshapes) are skipped. A
// tensor consumed by several operations receives the sum of their
// contributions.
func (t *GradientTape) Backward(output, seed *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: seed}

	// Gradient arithmetic runs on the same backend and must not be logged.
	prev := t.on
	t.on = false
	defer func() { t.on = prev }()

	for i := len(t.log) - 1; i >= 0; i-- {
		op := t.log[i]
		g, ok := grads[op.Output()]
		if !ok {
			continue
		}
		propagate(grads, op.Inputs(), op.Backward(g, backend), backend)
	}
	return grads
}

func propagate(grads map[*tensor.RawTensor]*tensor.RawTensor, inputs, contrib []*tensor.RawTensor, backend tensor.Backend) {
	for j, in := range inputs {
		if j >= len(contrib) || contrib[j] == nil {
			continue
		}
		if acc, ok := grads[in]; ok {
			grads[in] = backend.Add(acc, contrib[j])
			continue
		}
		grads[in] = contrib[j]
	}
}
