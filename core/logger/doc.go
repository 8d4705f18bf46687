// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the `start` command.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so that a sync triggered over HTTP can be correlated with every log line it produced.
// WithRun does the same for a sync run id, for runs started from the CLI.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Sync failed", zap.Error(err))
package logger
