package session

import "errors"

var (
	ErrNoActiveJob   = errors.New("no active job")
	ErrResumeMissing = errors.New("resume text is required")
	ErrStaleResult   = errors.New("generation result discarded after job switch")
	ErrInvalidInput  = errors.New("invalid input")
)
