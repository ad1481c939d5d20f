// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package lm_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxzc35/RNN-Experiments/autodiff"
	"github.com/zbxzc35/RNN-Experiments/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/lm"
)

func TestBuildAndDifferentiate(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	backend := autodiff.New(cpu.New())
	cfg := lm.Config{Context: 1, StateDim: 6, Layers: 2, SkipConnections: true, TimeLength: 4}
	model, err := lm.Build[float32](7, cfg, backend, lm.WithSeed(3), lm.WithLogger(logger))
	require.NoError(t, err)
	assert.NotEmpty(t, hook.AllEntries())

	batch, err := lm.NewBatch(
		[][]int32{{0, 1, 2, 3}, {4, 5, 6, 0}},
		[][]int32{{1, 2, 3, 4}, {5, 6, 0, 1}},
		backend,
	)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	out, err := model.Forward(batch)
	require.NoError(t, err)
	grads := autodiff.Backward(out.Cost, backend)
	backend.Tape().StopRecording()

	assert.Equal(t, []int{6, 7}, []int(out.Logits.Shape()))
	for _, name := range []string{lm.NodeHiddenState, lm.LayerNodeName("pre_rnn", 1), lm.NodeRegularizedCost} {
		_, ok := out.Node(name)
		assert.True(t, ok, name)
	}
	for _, p := range model.Parameters().All() {
		assert.Contains(t, grads, p.Tensor().Raw(), p.Name())
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := lm.DefaultConfig()
	cfg.Context = cfg.TimeLength

	_, err := lm.Build[float64](5, cfg, cpu.New())
	assert.ErrorIs(t, err, lm.ErrInvalidConfig)
}
