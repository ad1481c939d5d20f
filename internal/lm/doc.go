// Package lm builds the recurrent language model: an embedding lookup, a
// stack of tanh recurrent layers with optional skip connections, and a
// softmax output layer scored by cross-entropy in bits per symbol.
//
// Build wires the layers once and initializes every parameter in place.
// Each Forward call evaluates the graph on a batch and returns the named
// nodes of that evaluation, including the two scalar outputs:
//
//	model, err := lm.Build[float32](vocab, cfg, autodiff.New(cpu.New()), lm.WithSeed(7))
//	out, err := model.Forward(batch)
//	out.Cost         // "regularized_cost", the quantity to optimize
//	out.CrossEntropy // "cross_entropy", the quantity to monitor
//
// Time-major layout (time, batch, dim) is used between the embedding and the
// output projection; logits and targets are flattened batch-major, so row
// b*(T-C) + t of the logits pairs with targets[b][C+t].
package lm
