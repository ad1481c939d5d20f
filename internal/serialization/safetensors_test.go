package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	weight, err := tensor.RawFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	if err != nil {
		t.Fatalf("Failed to create weight tensor: %v", err)
	}
	bias, err := tensor.RawFromSlice([]float64{0.1, 0.2, 0.3}, tensor.Shape{3}, tensor.CPU)
	if err != nil {
		t.Fatalf("Failed to create bias tensor: %v", err)
	}
	return map[string]*tensor.RawTensor{
		"output_layer.weight": weight,
		"output_layer.bias":   bias,
	}
}

func TestSafeTensorsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	stateDict := testStateDict(t)

	if err := WriteSafeTensors(path, stateDict, map[string]string{"layers": "2"}); err != nil {
		t.Fatalf("WriteSafeTensors failed: %v", err)
	}

	file, err := ReadSafeTensors(path)
	if err != nil {
		t.Fatalf("ReadSafeTensors failed: %v", err)
	}
	if file.Metadata["layers"] != "2" {
		t.Errorf("metadata layers = %q, want %q", file.Metadata["layers"], "2")
	}
	if _, ok := file.Metadata[checksumKey]; !ok {
		t.Error("writer should record a data checksum")
	}
	if len(file.Tensors) != len(stateDict) {
		t.Fatalf("got %d tensors, want %d", len(file.Tensors), len(stateDict))
	}
	for name, want := range stateDict {
		got, ok := file.Tensors[name]
		if !ok {
			t.Fatalf("missing tensor %q", name)
		}
		if got.DType() != want.DType() || !got.Shape().Equal(want.Shape()) {
			t.Errorf("%s: got %s%v, want %s%v", name, got.DType(), got.Shape(), want.DType(), want.Shape())
		}
		if !bytes.Equal(got.Bytes(), want.Bytes()) {
			t.Errorf("%s: data differs after round trip", name)
		}
	}
}

func TestSafeTensorsHeaderAligned(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testStateDict(t), nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	size := binary.LittleEndian.Uint64(buf.Bytes()[:8])
	if size%8 != 0 {
		t.Errorf("header size %d is not 8-byte aligned", size)
	}
}

func TestSafeTensorsChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testStateDict(t), nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] ^= 0xFF

	_, err := Decode(bytes.NewReader(corrupt))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Decode error = %v, want ErrChecksumMismatch", err)
	}
}

func TestSafeTensorsTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testStateDict(t), nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-4]

	_, err := Decode(bytes.NewReader(truncated))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Decode error = %v, want ErrOutOfBounds", err)
	}
}

func TestSafeTensorsRejectsReservedName(t *testing.T) {
	raw := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	err := Encode(&bytes.Buffer{}, map[string]*tensor.RawTensor{metadataKey: raw}, nil)
	if !errors.Is(err, ErrReservedTensorName) {
		t.Errorf("Encode error = %v, want ErrReservedTensorName", err)
	}
}

func TestValidateOffsetsOverlap(t *testing.T) {
	err := validateOffsets([]tensorMeta{
		{Name: "a", Offset: 0, Size: 8},
		{Name: "b", Offset: 4, Size: 8},
	}, 16)
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrOffsetOverlap) {
		t.Fatalf("validateOffsets error = %v, want overlap ValidationError", err)
	}
	if verr.Tensor != "a" || verr.Tensor2 != "b" {
		t.Errorf("overlap names = %q, %q", verr.Tensor, verr.Tensor2)
	}
}

func TestDecodeHeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1))
	if _, err := Decode(&buf); !errors.Is(err, ErrHeaderTooLarge) {
		t.Errorf("Decode error = %v, want ErrHeaderTooLarge", err)
	}
}
