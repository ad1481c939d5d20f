package train

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
	"github.com/zbxzc35/RNN-Experiments/internal/optim"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Config controls a training run. In a YAML config file it lives under a
// "train" key next to the model fields read by lm.LoadConfig.
type Config struct {
	Steps     int     `yaml:"steps"`
	BatchSize int     `yaml:"batch_size"`
	Optimizer string  `yaml:"optimizer"` // "sgd" or "adam"
	LR        float64 `yaml:"learning_rate"`
	Momentum  float64 `yaml:"momentum"`
	ClipNorm  float64 `yaml:"clip_norm"`
	Seed      uint64  `yaml:"seed"`

	LogEvery        int    `yaml:"log_every"`
	EvalEvery       int    `yaml:"eval_every"`
	Checkpoint      string `yaml:"checkpoint"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
}

// DefaultConfig returns SGD with momentum and clipping, logging every 10
// steps and evaluating every 100.
func DefaultConfig() Config {
	return Config{
		Steps:     1000,
		BatchSize: 32,
		Optimizer: "sgd",
		LR:        0.1,
		Momentum:  0.9,
		ClipNorm:  1,
		Seed:      1,
		LogEvery:  10,
		EvalEvery: 100,
	}
}

// NewOptimizer creates the optimizer named by cfg over params.
func NewOptimizer[T tensor.Float, B tensor.Backend](cfg Config, params *nn.ParameterSet[T, B]) (optim.Optimizer, error) {
	switch cfg.Optimizer {
	case "", "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum, ClipNorm: cfg.ClipNorm}), nil
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LR, ClipNorm: cfg.ClipNorm}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want sgd or adam)", cfg.Optimizer)
	}
}

// LoadConfig reads the "train" section of a YAML file on top of
// DefaultConfig. A file without the section yields the defaults.
func LoadConfig(path string) (Config, error) {
	file := struct {
		Train Config `yaml:"train"`
	}{Train: DefaultConfig()}

	raw, err := os.ReadFile(path)
	if err != nil {
		return file.Train, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file.Train, fmt.Errorf("parse config %s: %w", path, err)
	}
	return file.Train, nil
}
