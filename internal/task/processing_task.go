package task

import (
	"context"
	"encoding/json"

	"imagevault/internal/mq"
	"imagevault/internal/repo"
	"imagevault/model"
)

// ProcessingMessage is the payload sent to the job runner, carrying
// the job id, the owning upload's numeric id and the attempt number.
// It does not carry the source path: the worker loads the upload row
// and resolves the assembled blob from its Path.
type ProcessingMessage struct {
	JobID    uint64 `json:"job_id"`
	UploadID uint64 `json:"upload_id"`
	Attempt  int    `json:"attempt"`
}

// CreateProcessingJob records a queued ProcessingJob for uploadID and
// publishes it to the primary queue, mirroring the teacher's
// CreateDownloadTask shape (create row, marshal, publish, mark-failed
// on any step error).
func CreateProcessingJob(ctx context.Context, uploadID uint64) error {
	job := &model.ProcessingJob{
		UploadID: uploadID,
		Status:   model.JobQueued,
	}
	if err := repo.Db.WithContext(ctx).Create(job).Error; err != nil {
		return err
	}
	msg := ProcessingMessage{JobID: job.ID, UploadID: uploadID, Attempt: 0}
	body, err := json.Marshal(msg)
	if err != nil {
		MarkJobFailed(job.ID, err)
		return err
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		MarkJobFailed(job.ID, err)
		return err
	}
	if err := publisher.PublishTask(ctx, body); err != nil {
		MarkJobFailed(job.ID, err)
		return err
	}
	return nil
}

// MarkJobFailed records a failed processing job attempt.
func MarkJobFailed(jobID uint64, err error) {
	_ = repo.Db.Model(&model.ProcessingJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.JobFailed,
			"last_error": err.Error(),
		}).Error
}
