package places

import "errors"

var (
	// ErrMissingAPIKey is returned when the client is built without a key
	ErrMissingAPIKey = errors.New("places: API key is required")

	// ErrInvalidConfig is returned when the configuration is incomplete
	ErrInvalidConfig = errors.New("places: invalid config")

	// ErrUpstream is returned when the provider call fails or reports a non-success status
	ErrUpstream = errors.New("places: upstream error")
)
