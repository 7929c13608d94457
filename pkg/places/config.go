package places

import "time"

// Config represents the configuration for the Google Places client
type Config struct {
	// APIKey is the Google Maps Platform key
	APIKey string

	// BaseURL is the Maps API root, e.g. https://maps.googleapis.com/maps/api
	BaseURL string

	// Timeout bounds a single HTTP round trip
	Timeout time.Duration

	// RequestsPerSecond caps outbound calls; burst equals the ceiling of this value
	RequestsPerSecond float64

	// Observer is notified after every call (optional)
	Observer Observer
}

// Observer receives the outcome of each catalog call.
// status is the HTTP status code, or 0 when the request never completed.
type Observer func(endpoint string, status int, d time.Duration)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
