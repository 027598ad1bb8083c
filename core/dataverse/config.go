package dataverse

// Config holds transport settings for the Web API client.
type Config struct {
	// APIVersion is the Web API version used in request paths (e.g., 9.2).
	APIVersion string `mapstructure:"api_version" default:"9.2"`
	// TimeoutSeconds bounds connection setup, TLS handshake and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"0"`
}
