package remote

// Config holds configuration for the billing provider client.
type Config struct {
	// SecretKey is the Stripe secret API key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// APIURL overrides the API base URL (e.g. a local stripe-mock). Empty uses the default.
	APIURL string `mapstructure:"api_url" default:""`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"25"`
	// Burst is the number of requests allowed above the steady rate.
	Burst int `mapstructure:"burst" default:"5"`
}
