// Package train runs the training loop of the language model: forward,
// backward from the regularized cost, optimizer step, with periodic
// evaluation of the cross-entropy and checkpoints.
package train

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/data"
	"github.com/zbxzc35/RNN-Experiments/internal/lm"
	"github.com/zbxzc35/RNN-Experiments/internal/optim"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// StepResult holds the monitored quantities of one training step.
type StepResult struct {
	Cost         float64 // regularized_cost
	CrossEntropy float64 // cross_entropy, bits per symbol
	GradNorm     float64 // global gradient norm before clipping
}

// Trainer owns a model and its optimizer.
type Trainer[T tensor.Float, B autodiff.BackwardCapable] struct {
	model     *lm.Model[T, B]
	optimizer optim.Optimizer
	cfg       Config
	log       logrus.FieldLogger
	step      int
	metadata  map[string]string
}

// New creates a Trainer with the optimizer named in cfg.
func New[T tensor.Float, B autodiff.BackwardCapable](model *lm.Model[T, B], cfg Config, logger logrus.FieldLogger) (*Trainer[T, B], error) {
	optimizer, err := NewOptimizer(cfg, model.Parameters())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Trainer[T, B]{
		model:     model,
		optimizer: optimizer,
		cfg:       cfg,
		log:       logger,
	}, nil
}

// Model returns the trained model.
func (t *Trainer[T, B]) Model() *lm.Model[T, B] {
	return t.model
}

// Optimizer returns the optimizer.
func (t *Trainer[T, B]) Optimizer() optim.Optimizer {
	return t.optimizer
}

// StepCount returns the number of completed steps.
func (t *Trainer[T, B]) StepCount() int {
	return t.step
}

// SetMetadata adds entries saved with every checkpoint, such as the
// tokenizer vocabulary.
func (t *Trainer[T, B]) SetMetadata(metadata map[string]string) {
	t.metadata = metadata
}

// Step runs forward and backward on batch and applies one optimizer update.
// The gradients stay attached to the parameters until the next Step.
func (t *Trainer[T, B]) Step(batch data.Batch) (StepResult, error) {
	backend := t.model.Backend()
	b, err := lm.NewBatch(batch.Features, batch.Targets, backend)
	if err != nil {
		return StepResult{}, err
	}

	params := t.model.Parameters()
	params.ZeroGrad()

	tape := backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	out, err := t.model.Forward(b)
	if err != nil {
		tape.StopRecording()
		tape.Clear()
		return StepResult{}, err
	}
	grads := autodiff.Backward(out.Cost, backend)
	tape.StopRecording()
	tape.Clear()

	params.AssignGrads(grads)
	t.optimizer.Step(grads)
	t.step++

	return StepResult{
		Cost:         float64(out.Cost.Item()),
		CrossEntropy: float64(out.CrossEntropy.Item()),
		GradNorm:     t.optimizer.LastGradNorm(),
	}, nil
}

// Evaluate returns the cross-entropy in bits per symbol over every window of
// ds, weighting each batch by the number of predicted positions.
func (t *Trainer[T, B]) Evaluate(ds *data.Dataset) (float64, error) {
	backend := t.model.Backend()
	tape := backend.GetTape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	predicted := ds.TimeLength() - t.model.Config().Context
	var sum float64
	var count int
	it := ds.Batches(t.batchSize(), nil)
	for batch, ok := it.Next(); ok; batch, ok = it.Next() {
		b, err := lm.NewBatch(batch.Features, batch.Targets, backend)
		if err != nil {
			return 0, err
		}
		out, err := t.model.Forward(b)
		if err != nil {
			return 0, err
		}
		n := batch.Size() * predicted
		sum += float64(out.CrossEntropy.Item()) * float64(n)
		count += n
	}
	if count == 0 {
		return 0, fmt.Errorf("evaluate: empty dataset")
	}
	return sum / float64(count), nil
}

// Run trains for cfg.Steps steps over train, cycling through shuffled passes.
// valid may be nil. Run stops early with ctx.Err() when ctx is cancelled,
// after writing a final checkpoint if one is configured.
func (t *Trainer[T, B]) Run(ctx context.Context, train, valid *data.Dataset) error {
	it := train.Batches(t.batchSize(), rand.NewSource(t.cfg.Seed))
	// A resumed run continues the shuffled order where the saved run stopped.
	fastForward(it, t.step)
	log := t.log.WithFields(logrus.Fields{
		"windows":    train.NumWindows(),
		"batch_size": t.batchSize(),
		"optimizer":  t.cfg.Optimizer,
	})
	log.WithField("parameters", t.model.Parameters().NumElements()).Info("starting training")

	start := time.Now()
	for t.step < t.cfg.Steps {
		if err := ctx.Err(); err != nil {
			log.WithField("step", t.step).Warn("training interrupted")
			if cerr := t.checkpoint(); cerr != nil {
				return cerr
			}
			return err
		}

		batch, ok := it.Next()
		if !ok {
			it.Reset()
			log.WithField("epoch", it.Epoch()).Debug("new pass over the training data")
			continue
		}

		result, err := t.Step(batch)
		if err != nil {
			return fmt.Errorf("step %d: %w", t.step+1, err)
		}

		if every(t.cfg.LogEvery, t.step) {
			log.WithFields(logrus.Fields{
				"step":             t.step,
				"regularized_cost": result.Cost,
				"cross_entropy":    result.CrossEntropy,
				"grad_norm":        result.GradNorm,
				"elapsed":          time.Since(start).Round(time.Millisecond),
			}).Info("train")
		}
		if valid != nil && every(t.cfg.EvalEvery, t.step) {
			ce, err := t.Evaluate(valid)
			if err != nil {
				return fmt.Errorf("evaluate at step %d: %w", t.step, err)
			}
			log.WithFields(logrus.Fields{"step": t.step, "cross_entropy": ce}).Info("valid")
		}
		if every(t.cfg.CheckpointEvery, t.step) {
			if err := t.checkpoint(); err != nil {
				return err
			}
		}
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("training done")
	return t.checkpoint()
}

func (t *Trainer[T, B]) checkpoint() error {
	if t.cfg.Checkpoint == "" {
		return nil
	}
	if err := SaveCheckpoint(t.cfg.Checkpoint, t.model, t.optimizer, t.step, t.metadata); err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{"step": t.step, "path": t.cfg.Checkpoint}).Info("checkpoint saved")
	return nil
}

// fastForward consumes the batches of steps training steps, reshuffling at
// the end of each pass exactly as Run does.
func fastForward(it *data.Iterator, steps int) {
	for done := 0; done < steps; {
		if _, ok := it.Next(); ok {
			done++
			continue
		}
		it.Reset()
		if _, ok := it.Next(); !ok {
			return
		}
		done++
	}
}

func (t *Trainer[T, B]) batchSize() int {
	return max(t.cfg.BatchSize, 1)
}

func every(n, step int) bool {
	return n > 0 && step%n == 0
}
