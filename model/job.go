package model

import "time"

// Job statuses mirror the teacher's DownloadTask lifecycle.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// ProcessingJob is durable bookkeeping for at-least-once execution of
// the image variant pipeline, mirroring the teacher's DownloadTask.
type ProcessingJob struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	UploadID uint64 `gorm:"column:upload_id;index;not null"`

	Status      string     `gorm:"column:status;size:16;index;not null"`
	Attempt     int        `gorm:"column:attempt;default:0"`
	LastError   string     `gorm:"column:last_error;type:text"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (ProcessingJob) TableName() string {
	return "processing_job"
}
