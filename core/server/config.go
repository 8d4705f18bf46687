package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Mode controls which sync operations the HTTP surface may trigger (full, readonly).
	// In readonly mode only dry-run syncs and validation are served.
	Mode string `mapstructure:"mode" default:"readonly"`
}

const (
	ModeFull     = "full"
	ModeReadOnly = "readonly"
)

// IsValidMode checks if the configured mode is valid.
func (c Config) IsValidMode() bool {
	switch c.Mode {
	case ModeFull, ModeReadOnly:
		return true
	default:
		return false
	}
}

// AllowsMutations reports whether the HTTP surface may run non dry-run syncs.
func (c Config) AllowsMutations() bool {
	return c.Mode == ModeFull
}
