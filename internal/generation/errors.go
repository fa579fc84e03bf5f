package generation

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid generation input")
	ErrEmptyResponse = errors.New("empty generation response")
	ErrInvalidOutput = errors.New("invalid generation output")
)
