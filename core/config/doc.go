// Package config provides configuration management for webresource-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every
// section. The connection string, solution and source directory are command
// arguments and never part of the configuration.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Dataverse: Web API version, HTTP timeout and request rate
//   - Sync: unknown extension policy and exclude patterns
//   - Storage: S3/MinIO backups of overwritten content
//   - Log: Logging level and format
//   - Database: optional run journal (MySQL or SQLite)
//
// Environment variables are the upper-cased keys with "_" separators, for
// example SYNC_UNKNOWN_EXTENSION=fail or STORAGE_ENABLED=true.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Dataverse.APIVersion)
package config
