package tensor

// Backend defines the interface that compute backends implement.
// Backends handle the actual computation for tensor operations; the autodiff
// decorator implements it as well, recording each call on a tape.
//
// Shape errors are programming errors and make implementations panic.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Element-wise operations with a scalar.
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul multiplies 2D matrices: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Narrow(t *RawTensor, dim, start, length int) *RawTensor // slice [start, start+length) along dim
	Cat(tensors []*RawTensor, dim int) *RawTensor           // concatenate along dim

	// Embedding looks up rows of weight [V, D] by int32 indices of any shape.
	// The result has shape indices.Shape() + [D].
	Embedding(weight, indices *RawTensor) *RawTensor

	// Tanh applies the hyperbolic tangent element-wise.
	Tanh(x *RawTensor) *RawTensor

	// CrossEntropy returns the scalar mean negative log-likelihood (natural log)
	// of int32 targets [N] under softmax(logits [N, C]).
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
