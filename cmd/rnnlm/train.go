package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/internal/data"
	"github.com/zbxzc35/RNN-Experiments/internal/lm"
	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
	"github.com/zbxzc35/RNN-Experiments/internal/tokenizer"
	"github.com/zbxzc35/RNN-Experiments/internal/train"
)

type trainFlags struct {
	configPath string
	corpus     string
	tokenizer  string
	dtype      string
	valid      float64
	lowMemory  bool
	resume     string
	logLevel   string

	model lm.Config
	train train.Config

	set map[string]bool // flags given on the command line
}

var errResumeConflict = errors.New("settings conflict with the resumed checkpoint")

func parseTrainFlags(args []string) (*trainFlags, error) {
	f := &trainFlags{model: lm.DefaultConfig(), train: train.DefaultConfig()}
	fs := flag.NewFlagSet("train", flag.ContinueOnError)

	fs.StringVar(&f.configPath, "config", "", "YAML config (model fields plus a train section); flags override it")
	fs.StringVar(&f.corpus, "corpus", "", "training text file")
	fs.StringVar(&f.tokenizer, "tokenizer", "char", `"char" or a tiktoken encoding such as cl100k_base`)
	fs.StringVar(&f.dtype, "dtype", "float32", "parameter storage type: float32 or float64")
	fs.Float64Var(&f.valid, "valid", 0.1, "fraction of windows held out for validation")
	fs.BoolVar(&f.lowMemory, "low-memory", true, "scan the recurrent stack one layer at a time")
	fs.StringVar(&f.resume, "resume", "", "checkpoint to continue from")
	fs.StringVar(&f.logLevel, "log-level", "info", "logrus level")

	fs.IntVar(&f.model.Context, "context", f.model.Context, "timesteps excluded from the loss")
	fs.IntVar(&f.model.StateDim, "state-dim", f.model.StateDim, "embedding and recurrent state width")
	fs.IntVar(&f.model.Layers, "layers", f.model.Layers, "number of recurrent layers")
	fs.BoolVar(&f.model.SkipConnections, "skip", f.model.SkipConnections, "feed the embedding to every layer and concatenate all states")
	fs.IntVar(&f.model.TimeLength, "time-length", f.model.TimeLength, "training sequence length")

	fs.IntVar(&f.train.Steps, "steps", f.train.Steps, "training steps")
	fs.IntVar(&f.train.BatchSize, "batch-size", f.train.BatchSize, "windows per batch")
	fs.StringVar(&f.train.Optimizer, "optimizer", f.train.Optimizer, "sgd or adam")
	fs.Float64Var(&f.train.LR, "lr", f.train.LR, "learning rate")
	fs.Float64Var(&f.train.Momentum, "momentum", f.train.Momentum, "SGD momentum")
	fs.Float64Var(&f.train.ClipNorm, "clip", f.train.ClipNorm, "maximum global gradient norm, 0 disables")
	fs.Uint64Var(&f.train.Seed, "seed", f.train.Seed, "seed for initialization and shuffling")
	fs.IntVar(&f.train.LogEvery, "log-every", f.train.LogEvery, "steps between training logs")
	fs.IntVar(&f.train.EvalEvery, "eval-every", f.train.EvalEvery, "steps between validation runs")
	fs.StringVar(&f.train.Checkpoint, "checkpoint", "", "checkpoint file to write")
	fs.IntVar(&f.train.CheckpointEvery, "checkpoint-every", 0, "steps between checkpoints, 0 writes only at the end")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.configPath != "" {
		var err error
		if f.model, err = lm.LoadConfig(f.configPath); err != nil {
			return nil, err
		}
		if f.train, err = train.LoadConfig(f.configPath); err != nil {
			return nil, err
		}
		// Parsing again puts the explicit flags back on top of the file.
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// resumeConflicts reports architecture or tokenizer settings that disagree
// with the checkpoint being resumed. With -config every model field counts as
// given; otherwise only flags present on the command line do.
func (f *trainFlags) resumeConflicts(ckpt lm.Config, meta map[string]string) error {
	var conflicts []string
	check := func(name string, ours, theirs any) {
		if (f.configPath != "" || f.set[name]) && ours != theirs {
			conflicts = append(conflicts, fmt.Sprintf("%s %v, checkpoint has %v", name, ours, theirs))
		}
	}
	check("context", f.model.Context, ckpt.Context)
	check("state-dim", f.model.StateDim, ckpt.StateDim)
	check("layers", f.model.Layers, ckpt.Layers)
	check("skip", f.model.SkipConnections, ckpt.SkipConnections)
	check("time-length", f.model.TimeLength, ckpt.TimeLength)
	if f.set["tokenizer"] && f.tokenizer != meta[metaTokenizer] {
		conflicts = append(conflicts, fmt.Sprintf("tokenizer %s, checkpoint has %s", f.tokenizer, meta[metaTokenizer]))
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: %s", errResumeConflict, strings.Join(conflicts, "; "))
	}
	return nil
}

// vocabulary returns the tokenizer and model config for a run: rebuilt from
// the checkpoint when resuming, from the corpus and flags otherwise.
func (f *trainFlags) vocabulary(corpus string) (tokenizer.Tokenizer, lm.Config, error) {
	if f.resume == "" {
		tok, err := tokenizer.New(f.tokenizer, corpus)
		return tok, f.model, err
	}

	cfg, vocab, meta, err := train.ReadCheckpointConfig(f.resume)
	if err != nil {
		return nil, lm.Config{}, err
	}
	if err := f.resumeConflicts(cfg, meta); err != nil {
		return nil, lm.Config{}, err
	}
	tok, err := tokenizerFromMetadata(meta)
	if err != nil {
		return nil, lm.Config{}, err
	}
	if tok.VocabSize() != vocab {
		return nil, lm.Config{}, fmt.Errorf("checkpoint %s: tokenizer has %d symbols, model has %d", f.resume, tok.VocabSize(), vocab)
	}
	return tok, cfg, nil
}

func runTrain(ctx context.Context, args []string, logger *logrus.Logger) error {
	f, err := parseTrainFlags(args)
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	switch f.dtype {
	case "float32":
		return trainModel[float32](ctx, f, logger)
	case "float64":
		return trainModel[float64](ctx, f, logger)
	default:
		return fmt.Errorf("unsupported -dtype %q", f.dtype)
	}
}

func trainModel[T tensor.Float](ctx context.Context, f *trainFlags, logger *logrus.Logger) error {
	corpus, err := readCorpus(f.corpus)
	if err != nil {
		return err
	}
	tok, cfg, err := f.vocabulary(corpus)
	if err != nil {
		return err
	}
	ids, err := tok.Encode(corpus)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	ds, err := data.NewDataset(ids, cfg.TimeLength)
	if err != nil {
		return err
	}
	trainSet, validSet := ds.Split(f.valid)
	logger.WithFields(logrus.Fields{
		"tokenizer": tok.Name(),
		"vocab":     tok.VocabSize(),
		"tokens":    len(ids),
		"windows":   ds.NumWindows(),
	}).Debug("corpus loaded")

	backend := autodiff.New(cpu.New())
	model, err := lm.Build[T](tok.VocabSize(), cfg, backend,
		lm.WithLogger(logger),
		lm.WithSeed(f.train.Seed),
		lm.WithLowMemory(f.lowMemory),
	)
	if err != nil {
		return err
	}

	trainer, err := train.New(model, f.train, logger)
	if err != nil {
		return err
	}
	meta, err := tokenizerMetadata(tok)
	if err != nil {
		return err
	}
	trainer.SetMetadata(meta)
	if f.resume != "" {
		if err := trainer.Resume(f.resume); err != nil {
			return err
		}
	}
	return trainer.Run(ctx, trainSet, validSet)
}
