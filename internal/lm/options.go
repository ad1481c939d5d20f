package lm

import (
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/zbxzc35/RNN-Experiments/internal/nn"
)

// Option customizes Build.
type Option func(*options)

type options struct {
	logger    *logrus.Logger
	src       rand.Source
	lowMemory bool

	embeddingInit nn.Initializer
	rnnWeightInit nn.Initializer
	rnnBiasInit   nn.Initializer
	outWeightInit nn.Initializer
	outBiasInit   nn.Initializer
}

func defaultOptions() options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.WarnLevel)

	return options{
		logger:        logger,
		src:           rand.NewSource(1),
		lowMemory:     true,
		embeddingInit: nn.IsotropicGaussian{Std: 0.1},
		rnnWeightInit: nn.Orthogonal{},
		rnnBiasInit:   nn.Constant{Value: 0},
		outWeightInit: nn.IsotropicGaussian{Std: 0.1},
		outBiasInit:   nn.Constant{Value: 0},
	}
}

// WithLogger sets the logger used while building. By default nothing is logged.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSeed draws initial parameters from a source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.src = rand.NewSource(seed)
	}
}

// WithSource draws initial parameters from src.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		if src != nil {
			o.src = src
		}
	}
}

// WithLowMemory selects the layer-major scan of the recurrent stack (the
// default). With false all layers advance together one timestep at a time.
// Both produce the same values.
func WithLowMemory(lowMemory bool) Option {
	return func(o *options) {
		o.lowMemory = lowMemory
	}
}

// WithEmbeddingInit overrides the embedding table initializer.
func WithEmbeddingInit(init nn.Initializer) Option {
	return func(o *options) {
		o.embeddingInit = init
	}
}

// WithRecurrentInit overrides the recurrent weight and bias initializers.
func WithRecurrentInit(weight, bias nn.Initializer) Option {
	return func(o *options) {
		o.rnnWeightInit, o.rnnBiasInit = weight, bias
	}
}

// WithOutputInit overrides the output projection initializers.
func WithOutputInit(weight, bias nn.Initializer) Option {
	return func(o *options) {
		o.outWeightInit, o.outBiasInit = weight, bias
	}
}
