// Copyright 2025 RNN-Experiments Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the typed tensors and backend contract used by the
// language model.
//
// A Tensor[T, B] pairs a RawTensor (shape, dtype and bytes) with the backend
// that executes its operations. Token ids travel as Tensor[int32, B].
//
//	backend := cpu.New()
//	ids, _ := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{1, 3}, backend)
package tensor

import "github.com/zbxzc35/RNN-Experiments/internal/tensor"

// DType is any element type a tensor can hold.
type DType = tensor.DType

// Float is the set of float element types the layers are generic over.
type Float = tensor.Float

// DataType identifies the element type of a RawTensor at runtime.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
)

// Device identifies where tensor memory lives.
type Device = tensor.Device

// CPU is host memory.
const CPU = tensor.CPU

// Shape is a tensor shape.
type Shape = tensor.Shape

// RawTensor is an untyped tensor buffer.
type RawTensor = tensor.RawTensor

// Backend executes tensor operations.
type Backend = tensor.Backend

// Tensor is a typed tensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// NewRaw allocates a zeroed raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros returns a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, b)
}

// Full returns a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full(shape, value, b)
}

// Cat concatenates tensors along dim.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}
