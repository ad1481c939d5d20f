package lm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the architecture knobs of the language model.
type Config struct {
	// Context is the number of leading timesteps excluded from the loss.
	Context int `json:"context" yaml:"context"`

	// StateDim is the width of the embedding and of every recurrent layer.
	StateDim int `json:"state_dim" yaml:"state_dim"`

	// Layers is the number of stacked recurrent layers.
	Layers int `json:"layers" yaml:"layers"`

	// SkipConnections feeds the embedding to every layer and concatenates
	// all layer states before the output projection.
	SkipConnections bool `json:"skip_connections" yaml:"skip_connections"`

	// TimeLength is the sequence length of a training batch.
	TimeLength int `json:"time_length" yaml:"time_length"`
}

// DefaultConfig returns a small single-layer character model.
func DefaultConfig() Config {
	return Config{
		Context:    10,
		StateDim:   256,
		Layers:     1,
		TimeLength: 100,
	}
}

// Validate reports the first broken invariant, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Layers < 1:
		return fmt.Errorf("%w: layers must be >= 1, got %d", ErrInvalidConfig, c.Layers)
	case c.StateDim < 1:
		return fmt.Errorf("%w: state_dim must be >= 1, got %d", ErrInvalidConfig, c.StateDim)
	case c.Context < 0:
		return fmt.Errorf("%w: context must be >= 0, got %d", ErrInvalidConfig, c.Context)
	case c.Context >= c.TimeLength:
		return fmt.Errorf("%w: context %d leaves no timesteps of time_length %d", ErrInvalidConfig, c.Context, c.TimeLength)
	}
	return nil
}

// OutputInputDim is the input width of the output projection: Layers*StateDim
// with skip connections, StateDim otherwise.
func (c Config) OutputInputDim() int {
	if c.SkipConnections {
		return c.Layers * c.StateDim
	}
	return c.StateDim
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
