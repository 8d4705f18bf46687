// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each partial configuration as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, mode)
//   - Database: mapping table connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials and bucket for catalog documents and reports
//   - Stripe: billing provider credentials and request pacing
//   - Catalog: local catalog document locations and default currency
//   - Sync: retry/backoff parameters and report archiving
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.MaxAttempts)
package config
