package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
	ErrNameTooLong   = errors.New("name exceeds maximum length")
)
