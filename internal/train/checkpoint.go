package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/zbxzc35/RNN-Experiments/internal/lm"
	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/optim"
	"github.com/zbxzc35/RNN-Experiments/internal/serialization"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Checkpoint metadata keys.
const (
	MetaConfig    = "config"
	MetaVocabSize = "vocab_size"
	MetaStep      = "step"
)

// stateful is implemented by optimizers with buffers worth saving.
type stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(map[string]*tensor.RawTensor) error
}

// OptimizerPath returns the file next to a checkpoint that holds the
// optimizer state.
func OptimizerPath(path string) string {
	return path + ".optim"
}

// SaveCheckpoint writes the model parameters to path with the model config,
// vocabulary size and step in the metadata, plus extra entries. Optimizer
// state, when the optimizer has any, goes to OptimizerPath(path).
func SaveCheckpoint[T tensor.Float, B tensor.Backend](path string, model *lm.Model[T, B], opt optim.Optimizer, step int, extra map[string]string) error {
	cfg, err := json.Marshal(model.Config())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	metadata := map[string]string{
		MetaConfig:    string(cfg),
		MetaVocabSize: strconv.Itoa(model.VocabSize()),
		MetaStep:      strconv.Itoa(step),
	}
	for k, v := range extra {
		metadata[k] = v
	}
	if err := nn.Save(path, model.Parameters(), metadata); err != nil {
		return err
	}

	if s, ok := opt.(stateful); ok {
		if err := serialization.WriteSafeTensors(OptimizerPath(path), s.StateDict(), nil); err != nil {
			return fmt.Errorf("save optimizer state: %w", err)
		}
	}
	return nil
}

// ReadCheckpointConfig returns the model config, vocabulary size and full
// metadata stored in a checkpoint, so a matching model can be built before
// LoadCheckpoint.
func ReadCheckpointConfig(path string) (lm.Config, int, map[string]string, error) {
	file, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return lm.Config{}, 0, nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	var cfg lm.Config
	if err := json.Unmarshal([]byte(file.Metadata[MetaConfig]), &cfg); err != nil {
		return lm.Config{}, 0, nil, fmt.Errorf("checkpoint %s config: %w", path, err)
	}
	vocab, err := strconv.Atoi(file.Metadata[MetaVocabSize])
	if err != nil {
		return lm.Config{}, 0, nil, fmt.Errorf("checkpoint %s vocab size: %w", path, err)
	}
	return cfg, vocab, file.Metadata, nil
}

// LoadCheckpoint restores parameters from path and, when the file exists and
// opt keeps state, the optimizer state. It returns the saved step.
func LoadCheckpoint[T tensor.Float, B tensor.Backend](path string, model *lm.Model[T, B], opt optim.Optimizer) (int, error) {
	metadata, err := nn.Load(path, model.Parameters())
	if err != nil {
		return 0, err
	}
	step, _ := strconv.Atoi(metadata[MetaStep])

	s, ok := opt.(stateful)
	if !ok {
		return step, nil
	}
	file, err := serialization.ReadSafeTensors(OptimizerPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return step, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load optimizer state: %w", err)
	}
	if err := s.LoadStateDict(file.Tensors); err != nil {
		return 0, fmt.Errorf("load optimizer state: %w", err)
	}
	return step, nil
}

// Resume loads a checkpoint into the trainer and continues its step count.
func (t *Trainer[T, B]) Resume(path string) error {
	step, err := LoadCheckpoint(path, t.model, t.optimizer)
	if err != nil {
		return err
	}
	t.step = step
	t.log.WithField("step", step).WithField("path", path).Info("resumed from checkpoint")
	return nil
}
