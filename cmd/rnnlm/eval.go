package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zbxzc35/RNN-Experiments/internal/autodiff"
	"github.com/zbxzc35/RNN-Experiments/internal/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/internal/data"
	"github.com/zbxzc35/RNN-Experiments/internal/lm"
	"github.com/zbxzc35/RNN-Experiments/internal/train"
)

func runEval(args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	checkpoint := fs.String("checkpoint", "", "checkpoint written by train")
	corpusPath := fs.String("corpus", "", "text file to score")
	batchSize := fs.Int("batch-size", 32, "windows per batch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *checkpoint == "" {
		return fmt.Errorf("-checkpoint is required")
	}

	cfg, vocab, meta, err := train.ReadCheckpointConfig(*checkpoint)
	if err != nil {
		return err
	}
	tok, err := tokenizerFromMetadata(meta)
	if err != nil {
		return err
	}
	corpus, err := readCorpus(*corpusPath)
	if err != nil {
		return err
	}
	ids, err := tok.Encode(corpus)
	if err != nil {
		return err
	}
	ds, err := data.NewDataset(ids, cfg.TimeLength)
	if err != nil {
		return err
	}

	model, err := lm.Build[float32](vocab, cfg, autodiff.New(cpu.New()), lm.WithLogger(logger))
	if err != nil {
		return err
	}
	evalCfg := train.DefaultConfig()
	evalCfg.BatchSize = *batchSize
	trainer, err := train.New(model, evalCfg, logger)
	if err != nil {
		return err
	}
	if err := trainer.Resume(*checkpoint); err != nil {
		return err
	}

	bits, err := trainer.Evaluate(ds)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %.4f bits per symbol over %d windows\n", *corpusPath, bits, ds.NumWindows())
	return nil
}
