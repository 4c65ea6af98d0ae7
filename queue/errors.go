package queue

import "errors"

var (
	// ErrJobNotFound indicates a Poll call with an unknown job ID.
	ErrJobNotFound = errors.New("job not found")
	// ErrNilJob indicates a Submit call without a job function.
	ErrNilJob = errors.New("job function is nil")
)
