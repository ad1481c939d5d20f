// Package main provides the rnnlm command: train and evaluate recurrent
// language models on a text corpus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

const version = "v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `rnnlm %s - recurrent language models

Usage:
  rnnlm train -corpus FILE [flags]   Train a model
  rnnlm eval -checkpoint FILE -corpus FILE
                                     Report bits per symbol on a corpus
  rnnlm version                      Show version

Run "rnnlm <command> -h" for the flags of a command.
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, os.Args[2:], logger)
	case "eval":
		err = runEval(os.Args[2:], logger)
	case "version":
		fmt.Printf("rnnlm %s\n", version)
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.WithError(err).Error(os.Args[1] + " failed")
		os.Exit(1)
	}
}
