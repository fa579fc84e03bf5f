package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid resume input")
	ErrNoText       = errors.New("resume contains no extractable text")
)
