// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production). Debug level uses the development config, every
// other level the production config with the level applied.
//
// # Run Awareness
//
// The WithRun helper attaches the run id and the solution name to a logger so
// that every line of one sync can be correlated, including lines written by
// the journal and the backup store.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	l := logger.WithRun(log, runID, "contoso")
//	l.Info("All done")
package logger
