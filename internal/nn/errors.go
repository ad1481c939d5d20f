package nn

import "errors"

// Errors returned by parameter collections and checkpoints.
var (
	ErrDuplicateParameter = errors.New("duplicate parameter name")
	ErrMissingParameter   = errors.New("parameter missing from state dict")
	ErrUnexpectedTensor   = errors.New("state dict has a tensor with no matching parameter")
	ErrShapeMismatch      = errors.New("parameter shape mismatch")
)
