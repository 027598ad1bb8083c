package journal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Recorder persists runs and their entries.
type Recorder interface {
	// Begin inserts the run row. run.Status and run.StartedAt are filled in when empty.
	Begin(ctx context.Context, run *Run) error
	// Record appends one applied mutation.
	Record(ctx context.Context, entry *Entry) error
	// Finish stores the outcome of the run.
	Finish(ctx context.Context, runID string, outcome Outcome) error
}

// Migrate creates or updates the journal tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Run{}, &Entry{}); err != nil {
		return fmt.Errorf("failed to migrate journal tables: %w", err)
	}
	return nil
}

// NewRecorder returns a Recorder backed by db.
func NewRecorder(db *gorm.DB) Recorder {
	return &gormRecorder{db: db, now: time.Now}
}

type gormRecorder struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *gormRecorder) Begin(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

func (r *gormRecorder) Record(ctx context.Context, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record %s of %s: %w", entry.Action, entry.Name, err)
	}
	return nil
}

func (r *gormRecorder) Finish(ctx context.Context, runID string, outcome Outcome) error {
	status := StatusSucceeded
	message := ""
	if outcome.Err != nil {
		status = StatusFailed
		message = outcome.Err.Error()
	}

	// A map keeps zero counts in the UPDATE.
	result := r.db.WithContext(ctx).
		Model(&Run{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":        status,
			"created":       outcome.Created,
			"updated":       outcome.Updated,
			"published":     outcome.Published,
			"error_message": message,
			"finished_at":   r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, result.Error)
	}
	return nil
}

// Nop returns a Recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Begin(context.Context, *Run) error              { return nil }
func (nopRecorder) Record(context.Context, *Entry) error           { return nil }
func (nopRecorder) Finish(context.Context, string, Outcome) error { return nil }
