package nn

import (
	"fmt"

	"github.com/zbxzc35/RNN-Experiments/internal/serialization"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Save writes every parameter of params to a SafeTensors file at path,
// keyed by parameter name, with metadata in the header.
func Save[T tensor.Float, B tensor.Backend](path string, params *ParameterSet[T, B], metadata map[string]string) error {
	if err := serialization.WriteSafeTensors(path, params.StateDict(), metadata); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", path, err)
	}
	return nil
}

// Load reads a SafeTensors file written by Save into params and returns the
// stored metadata. Every parameter must be present with a matching shape.
func Load[T tensor.Float, B tensor.Backend](path string, params *ParameterSet[T, B]) (map[string]string, error) {
	file, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}
	if err := params.LoadStateDict(file.Tensors); err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}
	return file.Metadata, nil
}
