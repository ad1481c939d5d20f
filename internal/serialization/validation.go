package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorNameLen = 4096
)

// tensorMeta locates one tensor inside the data section.
type tensorMeta struct {
	Name   string
	Offset int64
	Size   int64
}

// validateOffsets checks for overlapping tensor regions and out-of-bounds access.
func validateOffsets(tensors []tensorMeta, dataSize int64) error {
	sorted := make([]tensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 || t.Offset+t.Size > dataSize {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d, data size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Err:     ErrOffsetOverlap,
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// validateName rejects empty, oversized, reserved and control-character names.
// Parameter names are dotted paths such as "recurrent.layer0.bias".
func validateName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Err: ErrInvalidTensorName, Details: "empty name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Err:     ErrInvalidTensorName,
			Tensor:  name[:32],
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case name == metadataKey:
		return &ValidationError{Err: ErrReservedTensorName, Tensor: name, Details: "reserved for metadata"}
	case strings.ContainsAny(name, "\x00\n\r"):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains a control character"}
	}
	return nil
}
