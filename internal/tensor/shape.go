package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
// An empty Shape is a scalar with one element.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Outer returns the product of the dimensions before dim.
func (s Shape) Outer(dim int) int {
	n := 1
	for _, d := range s[:dim] {
		n *= d
	}
	return n
}

// Inner returns the product of the dimensions after dim.
func (s Shape) Inner(dim int) int {
	n := 1
	for _, d := range s[dim+1:] {
		n *= d
	}
	return n
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are aligned from the right; two dimensions are compatible when they
// are equal or one of them is 1. Returns the broadcast shape, whether any
// broadcasting is needed, and an error for incompatible shapes.
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (5)    → (3, 5), true, nil
//	(3, 4) + (3, 5) → nil, false, error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aDim := dimFromRight(a, i)
		bDim := dimFromRight(b, i)

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

func dimFromRight(s Shape, i int) int {
	idx := len(s) - 1 - i
	if idx < 0 {
		return 1
	}
	return s[idx]
}

// BroadcastIndex maps a flat index of a tensor with outShape to the flat
// index of a tensor with inShape that was broadcast to outShape.
// inShape must be broadcast-compatible with outShape.
func BroadcastIndex(flat int, outShape Shape, outStrides []int, inShape Shape, inStrides []int) int {
	offset := len(outShape) - len(inShape)
	idx := 0
	rem := flat
	for d := 0; d < len(outShape); d++ {
		coord := rem / outStrides[d]
		rem %= outStrides[d]
		if d < offset {
			continue
		}
		inDim := d - offset
		if inShape[inDim] == 1 {
			continue
		}
		idx += coord * inStrides[inDim]
	}
	return idx
}
