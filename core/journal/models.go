package journal

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one invocation of the sync.
type Run struct {
	ID           string `gorm:"primaryKey;size:36"`
	Solution     string `gorm:"size:255;not null;index"`
	Source       string `gorm:"size:1024"`
	DryRun       bool
	Status       Status `gorm:"size:16;not null"`
	Created      int
	Updated      int
	Published    bool
	ErrorMessage string `gorm:"type:text"`
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// TableName overrides the gorm default.
func (Run) TableName() string {
	return "sync_runs"
}

// Entry is one mutation applied during a run.
type Entry struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	RunID      string `gorm:"size:36;not null;index"`
	Name       string `gorm:"size:1024;not null"`
	Action     string `gorm:"size:16;not null"`
	ResourceID string `gorm:"size:36"`
	CreatedAt  time.Time
}

// TableName overrides the gorm default.
func (Entry) TableName() string {
	return "sync_entries"
}

// Outcome summarizes a finished run.
type Outcome struct {
	Created   int
	Updated   int
	Published bool
	Err       error
}
