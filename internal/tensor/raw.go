package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level, dtype-tagged tensor representation.
//
// The element storage is a typed Go slice ([]float32, []float64, []int32 or
// []int64). Several RawTensors may share one storage slice (reshape views);
// kernels never write into their inputs, so sharing is safe.
type RawTensor struct {
	data   any
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	n := shape.NumElements()
	var data any
	switch dtype {
	case Float32:
		data = make([]float32, n)
	case Float64:
		data = make([]float64, n)
	case Int32:
		data = make([]int32, n)
	case Int64:
		data = make([]int64, n)
	default:
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}

	return &RawTensor{
		data:   data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// MustNewRaw is NewRaw for kernels, where an invalid shape is a programming error.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err)
	}
	return raw
}

// RawFromSlice copies data into a new RawTensor.
func RawFromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Values[T](raw), data)
	return raw, nil
}

// Values returns the typed storage of r.
// Panics if T does not match the tensor's dtype.
func Values[T DType](r *RawTensor) []T {
	v, ok := r.data.([]T)
	if !ok {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, DataTypeOf[T]()))
	}
	return v
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// AsFloat32 returns the storage as []float32.
func (r *RawTensor) AsFloat32() []float32 { return Values[float32](r) }

// AsFloat64 returns the storage as []float64.
func (r *RawTensor) AsFloat64() []float64 { return Values[float64](r) }

// AsInt32 returns the storage as []int32.
func (r *RawTensor) AsInt32() []int32 { return Values[int32](r) }

// AsInt64 returns the storage as []int64.
func (r *RawTensor) AsInt64() []int64 { return Values[int64](r) }

// Float64s returns a float64 copy of the elements, whatever the dtype.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	switch v := r.data.(type) {
	case []float32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float64:
		copy(out, v)
	case []int32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []int64:
		for i, x := range v {
			out[i] = float64(x)
		}
	}
	return out
}

// View returns a RawTensor with a new shape sharing r's storage.
// The element counts must match.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v as %v: element count differs", r.shape, shape)
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}, nil
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	var data any
	switch v := r.data.(type) {
	case []float32:
		data = append([]float32(nil), v...)
	case []float64:
		data = append([]float64(nil), v...)
	case []int32:
		data = append([]int32(nil), v...)
	case []int64:
		data = append([]int64(nil), v...)
	}
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Bytes encodes the elements little-endian, the layout used by SafeTensors.
func (r *RawTensor) Bytes() []byte {
	buf := make([]byte, r.ByteSize())
	switch v := r.data.(type) {
	case []float32:
		for i, x := range v {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
		}
	case []float64:
		for i, x := range v {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
		}
	case []int32:
		for i, x := range v {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(x)) //nolint:gosec // two's complement round-trip
		}
	case []int64:
		for i, x := range v {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(x)) //nolint:gosec // two's complement round-trip
		}
	}
	return buf
}

// RawFromBytes decodes little-endian element bytes produced by Bytes.
func RawFromBytes(buf []byte, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if len(buf) != raw.ByteSize() {
		return nil, fmt.Errorf("shape %v as %s needs %d bytes, got %d", shape, dtype, raw.ByteSize(), len(buf))
	}
	switch v := raw.data.(type) {
	case []float32:
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
	case []float64:
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	case []int32:
		for i := range v {
			v[i] = int32(binary.LittleEndian.Uint32(buf[i*4:])) //nolint:gosec // two's complement round-trip
		}
	case []int64:
		for i := range v {
			v[i] = int64(binary.LittleEndian.Uint64(buf[i*8:])) //nolint:gosec // two's complement round-trip
		}
	}
	return raw, nil
}
