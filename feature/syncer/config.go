package syncer

import "time"

// Config holds retry and reporting settings of the sync orchestrator.
type Config struct {
	// MaxAttempts bounds the attempts of a single remote call, first try included.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// InitialBackoff is the wait before the first retry. It doubles per retry.
	InitialBackoff time.Duration `mapstructure:"initial_backoff" default:"500ms"`
	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration `mapstructure:"max_backoff" default:"10s"`
	// IndexCacheTTL is how long the list of managed remote products is reused.
	IndexCacheTTL time.Duration `mapstructure:"index_cache_ttl" default:"5m"`
	// ReportPrefix, when set, archives every run report in the storage bucket under it.
	ReportPrefix string `mapstructure:"report_prefix" default:""`
}
