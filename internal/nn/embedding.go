package nn

import (
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// EmbeddingConfig describes an embedding table.
type EmbeddingConfig struct {
	NumEmbeddings int         // Vocabulary size
	Dim           int         // Embedding dimension
	Init          Initializer // Initializer for the table
}

// Embedding is a lookup table mapping token ids to dense vectors.
//
// Example:
//
//	embed := nn.NewEmbedding[float32]("embedding", nn.EmbeddingConfig{
//	    NumEmbeddings: 10, Dim: 4, Init: nn.IsotropicGaussian{Std: 0.1},
//	}, backend)
//	vectors := embed.Forward(ids) // (batch, time) -> (batch, time, 4)
type Embedding[T tensor.Float, B tensor.Backend] struct {
	Weight *Parameter[T, B] // [NumEmbeddings, Dim]
	cfg    EmbeddingConfig
}

// NewEmbedding allocates the table as "<name>.weight".
func NewEmbedding[T tensor.Float, B tensor.Backend](name string, cfg EmbeddingConfig, backend B) *Embedding[T, B] {
	return &Embedding[T, B]{
		Weight: NewParameter[T](name+".weight", tensor.Shape{cfg.NumEmbeddings, cfg.Dim}, cfg.Init, backend),
		cfg:    cfg,
	}
}

// Forward looks up ids of any shape; the result has shape ids.Shape() + [Dim].
// Panics if an id is outside [0, NumEmbeddings).
func (e *Embedding[T, B]) Forward(ids *tensor.Tensor[int32, B]) *tensor.Tensor[T, B] {
	return tensor.Embedding(e.Weight.Tensor(), ids)
}

// Parameters returns [Weight].
func (e *Embedding[T, B]) Parameters() []*Parameter[T, B] {
	return []*Parameter[T, B]{e.Weight}
}

// Initialize draws the table from its initializer.
func (e *Embedding[T, B]) Initialize(src rand.Source) {
	initializeAll(e.Parameters(), src)
}

// NumEmbeddings returns the vocabulary size.
func (e *Embedding[T, B]) NumEmbeddings() int {
	return e.cfg.NumEmbeddings
}

// Dim returns the embedding dimension.
func (e *Embedding[T, B]) Dim() int {
	return e.cfg.Dim
}
