package task

import (
	"context"
	"time"

	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"
)

// SweepRetention deletes the chunk directories of uploads that have sat
// in the failed state longer than olderThan. Assembled blobs and
// variants are not removed, and uploads in other states are not touched.
// Retention policy is unspecified (§9); this is an external hook with
// no default schedule — nothing in this repo calls it.
func SweepRetention(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	var uploads []model.Upload
	err := repo.Db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.StatusFailed, cutoff).
		Find(&uploads).Error
	if err != nil {
		return err
	}
	for _, upload := range uploads {
		_ = storage.Default.DeleteChunkDir(upload.UploadID)
	}
	return nil
}
