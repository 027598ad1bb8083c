// Package database opens the optional journal database.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that picks the
// MySQL or SQLite dialector from configuration, applies connection timeouts and
// verifies the connection with a ping before returning it.
//
// # Usage
//
//	db, err := database.Connect(ctx, cfg.Database)
//	if err != nil {
//	    return fmt.Errorf("journal database unavailable: %w", err)
//	}
package database
