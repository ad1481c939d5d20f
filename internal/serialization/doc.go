// Package serialization saves and loads parameter collections in the
// SafeTensors format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	[tensor data: raw little-endian bytes, in header order]
//
// The optional "__metadata__" header entry carries string key/value pairs.
// The writer adds a SHA-256 of the data section under "data_sha256"; the
// reader verifies it when present.
//
// Example usage:
//
//	err := serialization.WriteSafeTensors("model.safetensors", params.StateDict(), meta)
//
//	file, err := serialization.ReadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = params.LoadStateDict(file.Tensors)
package serialization
