package audit

import (
	"time"

	"gorm.io/gorm"
)

// Run is one completed (or failed) decode invocation, the operational
// history spec.md §7's "User-visible behavior" never specifies but any
// long-running CLI wants to keep. It is not the decoded message stream:
// spec.md §6's "Persisted state: none" still holds for the core's output.
type Run struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	FilePath       string    `gorm:"index;not null" json:"file_path"`
	Workers        int       `gorm:"not null" json:"workers"`
	Mode           string    `gorm:"not null" json:"mode"`
	MessagesOut    int       `gorm:"default:0" json:"messages_out"`
	WarningsOut    int       `gorm:"default:0" json:"warnings_out"`
	Succeeded      bool      `gorm:"not null" json:"succeeded"`
	FailureMessage string    `json:"failure_message,omitempty"`
	StartedAt      time.Time `gorm:"index;not null" json:"started_at"`
	FinishedAt     time.Time `gorm:"not null" json:"finished_at"`
	DurationMS     int64     `gorm:"not null" json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Run.
func (Run) TableName() string {
	return "decode_runs"
}

// BeforeCreate ensures CreatedAt is set, mirroring the teacher's
// Transmission.BeforeCreate hook.
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
