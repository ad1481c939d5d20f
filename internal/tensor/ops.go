package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{3, 1}, backend)
//	b := tensor.Zeros[float32](Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5] (broadcasted)
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Scale multiplies every element by s.
func (t *Tensor[T, B]) Scale(s float64) *Tensor[T, B] {
	return New[T](t.backend.MulScalar(t.raw, s), t.backend)
}

// AddScalar adds s to every element.
func (t *Tensor[T, B]) AddScalar(s float64) *Tensor[T, B] {
	return New[T](t.backend.AddScalar(t.raw, s), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions.
// With no axes, all dimensions are reversed.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 3, 4}, backend)
//	y := x.Transpose(1, 0, 2) // Shape: [3, 2, 4]
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T](t.backend.Transpose(t.raw, axes...), t.backend)
}

// Narrow returns the slice [start, start+length) along dim.
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T](t.backend.Tanh(t.raw), t.backend)
}

// Cat concatenates tensors along dim.
// All tensors must share the backend and agree on every other dimension.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("tensor.Cat: no tensors")
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	b := tensors[0].backend
	return New[T](b.Cat(raws, dim), b)
}

// Embedding gathers rows of weight (V, D) by int32 indices.
// The result has shape indices.Shape() + [D].
func Embedding[T Float, B Backend](weight *Tensor[T, B], indices *Tensor[int32, B]) *Tensor[T, B] {
	return New[T](weight.backend.Embedding(weight.raw, indices.raw), weight.backend)
}

// CrossEntropy returns the scalar mean softmax cross-entropy (in nats) of
// logits (N, C) against int32 class targets (N).
func CrossEntropy[T Float, B Backend](logits *Tensor[T, B], targets *Tensor[int32, B]) *Tensor[T, B] {
	return New[T](logits.backend.CrossEntropy(logits.raw, targets.raw), logits.backend)
}
