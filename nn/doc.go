// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers the recurrent language model is built from.
//
// # Overview
//
// This package contains:
//   - Layers: Embedding, Linear, SimpleRecurrent, RecurrentStack
//   - Loss: CrossEntropyBits
//   - Parameters: Parameter, ParameterSet, Save, Load
//   - Initialization: Constant, IsotropicGaussian, Orthogonal
//
// Layers are generic over the float type T and the backend B. Construction
// only allocates parameters; Initialize draws their values from a random
// source, so one seed reproduces a whole model.
//
// # Recurrent Layers
//
// SimpleRecurrent computes h[t] = tanh(x[t] @ W_in + h[t-1] @ W_rec + b) over
// a (time, batch, features) sequence. RecurrentStack chains layers; with skip
// connections every layer also receives its own direct input:
//
//	stack := nn.NewRecurrentStack[float32]("recurrent", nn.StackConfig{
//	    Layers:          2,
//	    StateDim:        256,
//	    SkipConnections: true,
//	    WeightInit:      nn.Orthogonal{},
//	    BiasInit:        nn.Constant{},
//	}, backend)
//	states := stack.Apply(inputs, true)
//
// # Checkpoints
//
// A ParameterSet round-trips through SafeTensors files:
//
//	err := nn.Save("model.safetensors", params, map[string]string{"step": "100"})
//	meta, err := nn.Load("model.safetensors", params)
package nn
