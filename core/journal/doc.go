// Package journal records sync runs in a relational database.
//
// Every run inserts one row into sync_runs when it starts and updates it when it
// finishes. Each mutation applied during the run adds one row to sync_entries, so
// a run that fails halfway still leaves a record of what was already written.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err := journal.Migrate(db); err != nil {
//	    return err
//	}
//	rec := journal.NewRecorder(db)
//
// When the database is disabled, Nop returns a recorder that does nothing.
package journal
