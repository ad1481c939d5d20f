// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/zbxzc35/RNN-Experiments/backend/cpu"
	"github.com/zbxzc35/RNN-Experiments/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Int32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Int32 {
		t.Errorf("DType() = %v, want int32", raw.DType())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
}

func TestTokenIDs(t *testing.T) {
	backend := cpu.New()
	ids, err := tensor.FromSlice([]int32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	// (batch, time) -> (time, batch)
	tm := ids.Transpose(1, 0)
	if !tm.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3 2]", tm.Shape())
	}
	want := []int32{1, 4, 2, 5, 3, 6}
	for i, v := range tm.Data() {
		if v != want[i] {
			t.Errorf("Data()[%d] = %d, want %d", i, v, want[i])
		}
	}

	tail := ids.Narrow(1, 1, 2)
	if got := tail.At(1, 0); got != 5 {
		t.Errorf("Narrow At(1,0) = %d, want 5", got)
	}
}

func TestCat(t *testing.T) {
	backend := cpu.New()
	a := tensor.Full(tensor.Shape{2, 1}, float32(1), backend)
	b := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)

	c := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{a, b}, 1)
	if !c.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Cat shape = %v, want [2 3]", c.Shape())
	}
	if c.At(1, 0) != 1 || c.At(1, 2) != 0 {
		t.Errorf("Cat values = %v", c.Data())
	}
}
