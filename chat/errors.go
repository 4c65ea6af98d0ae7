package chat

import "errors"

var (
	// ErrStoreRequired indicates a nil memory store was passed to NewPipeline.
	ErrStoreRequired = errors.New("memory store is required")

	// ErrModelRequired indicates a nil model constructor was passed to NewPipeline.
	ErrModelRequired = errors.New("chat model constructor is required")

	// ErrEmptyQuery indicates a Run call with an empty query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoResponse indicates the model returned no choices.
	ErrNoResponse = errors.New("model returned no response")
)
