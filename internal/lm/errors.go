package lm

import "errors"

var (
	// ErrInvalidConfig is returned by Build and Config.Validate.
	ErrInvalidConfig = errors.New("lm: invalid config")

	// ErrShapeMismatch is returned by Forward when features and targets do
	// not form matching (batch, time) matrices.
	ErrShapeMismatch = errors.New("lm: batch shape mismatch")

	// ErrTokenOutOfRange is returned by Forward for ids outside [0, vocab).
	ErrTokenOutOfRange = errors.New("lm: token id out of range")
)
