package worker

import (
	"context"
	"time"

	"imagevault/config"
	"imagevault/internal/repo"
	"imagevault/internal/service"
	"imagevault/internal/storage"
	"imagevault/internal/task"
	"imagevault/model"
)

// ProcessProcessingJob executes one attempt of a processing job: it
// claims the job by a status-guarded update (so a redelivered message
// that's already being handled is a no-op), then runs the variant
// pipeline against the owning upload.
func ProcessProcessingJob(ctx context.Context, jobID uint64) error {
	var job model.ProcessingJob
	if err := repo.Db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		return err
	}
	if job.Status == model.JobSucceeded {
		return nil
	}

	startedAt := time.Now()
	res := repo.Db.WithContext(ctx).Model(&model.ProcessingJob{}).
		Where("id = ? AND status IN ?", jobID, []string{model.JobQueued, model.JobFailed}).
		Updates(map[string]interface{}{
			"status":     model.JobRunning,
			"attempt":    job.Attempt + 1,
			"started_at": &startedAt,
			"last_error": "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	var upload model.Upload
	if err := repo.Db.WithContext(ctx).Where("id = ?", job.UploadID).First(&upload).Error; err != nil {
		task.MarkJobFailed(jobID, err)
		return err
	}

	lock := repo.NewUploadLock(repo.Redis, upload.UploadID, config.AppConfig.JobTimeout)
	if err := lock.Lock(ctx); err != nil {
		task.MarkJobFailed(jobID, err)
		return err
	}
	defer lock.Unlock(ctx)

	if upload.Status == model.StatusComplete {
		return finishProcessingJob(jobID)
	}

	sourcePath := storage.Default.AbsPath(upload.Path)
	if err := service.ProcessUpload(ctx, &upload, sourcePath); err != nil {
		task.MarkJobFailed(jobID, err)
		return err
	}
	return finishProcessingJob(jobID)
}

func finishProcessingJob(jobID uint64) error {
	finishedAt := time.Now()
	return repo.Db.Model(&model.ProcessingJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      model.JobSucceeded,
			"finished_at": &finishedAt,
		}).Error
}
