package service

import (
	"context"

	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/model"

	"gorm.io/gorm"
)

// IsReady reports whether upload has an original image row, the
// signal the /ready endpoint polls on (§6).
func IsReady(ctx context.Context, uploadID string) (bool, error) {
	upload, err := GetUploadByUploadID(ctx, uploadID)
	if err != nil {
		return false, err
	}
	var image model.Image
	err = repo.Db.WithContext(ctx).
		Where("upload_id = ? AND variant = ?", upload.ID, model.VariantOriginal).
		First(&image).Error
	if err == nil {
		return true, nil
	}
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return false, errs.Wrap(errs.InternalIO, "check original image", err)
}
