package lm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{Context: 1, StateDim: 4, Layers: 2, TimeLength: 5}
	require.NoError(t, valid.Validate())
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"NoLayers", func(c *Config) { c.Layers = 0 }},
		{"NoState", func(c *Config) { c.StateDim = 0 }},
		{"NegativeContext", func(c *Config) { c.Context = -1 }},
		{"ContextEqualsTime", func(c *Config) { c.Context = 5 }},
		{"ContextBeyondTime", func(c *Config) { c.Context = 9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_OutputInputDim(t *testing.T) {
	cfg := Config{StateDim: 4, Layers: 3, TimeLength: 2}
	assert.Equal(t, 4, cfg.OutputInputDim())

	cfg.SkipConnections = true
	assert.Equal(t, 12, cfg.OutputInputDim())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_dim: 32\nlayers: 3\nskip_connections: true\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.StateDim)
	assert.Equal(t, 3, cfg.Layers)
	assert.True(t, cfg.SkipConnections)
	assert.Equal(t, DefaultConfig().TimeLength, cfg.TimeLength, "unset fields keep defaults")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("context: 200\ntime_length: 100\n"), 0o600))
	_, err = LoadConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
