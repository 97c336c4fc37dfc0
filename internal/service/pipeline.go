package service

import (
	"bytes"
	"context"
	"net/http"
	"os"

	"imagevault/config"
	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"
	"imagevault/utils"

	"github.com/disintegration/imaging"
	"gorm.io/gorm/clause"
)

// ProcessUpload runs the image variant pipeline (§4.5) against the
// assembled source at sourcePath: it decodes the source, records the
// original variant, derives the fixed set of resized JPEG variants,
// and on success transitions upload to complete. Any failure marks
// upload failed and returns the error for the job runner to retry.
func ProcessUpload(ctx context.Context, upload *model.Upload, sourcePath string) error {
	if err := processUpload(ctx, upload, sourcePath); err != nil {
		_ = setStatus(ctx, upload, model.StatusFailed)
		return err
	}
	return setStatus(ctx, upload, model.StatusComplete)
}

func processUpload(ctx context.Context, upload *model.Upload, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return errs.Wrap(errs.InternalIO, "source file missing", err)
	}
	if info.Size() == 0 {
		return errs.New(errs.InternalIO, "source file is empty")
	}

	mimeType, err := detectMime(sourcePath)
	if err != nil {
		return errs.Wrap(errs.InternalIO, "read source file", err)
	}

	src, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return errs.Wrap(errs.ProcessingFailed, "decode source image", err)
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if err := upsertImage(ctx, upload.ID, model.VariantOriginal, upload.Path, mimeType, srcW, srcH, upload.FileChecksum); err != nil {
		return err
	}

	for _, variant := range config.AppConfig.Variants {
		resized := imaging.Fit(src, variant.LongestSide, variant.LongestSide, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(config.AppConfig.JPEGQuality)); err != nil {
			return errs.Wrap(errs.ProcessingFailed, "encode variant "+variant.Tag, err)
		}

		path, _, err := storage.Default.PutBlob(upload.UploadID, variant.Tag+".jpg", bytes.NewReader(buf.Bytes()))
		if err != nil {
			return errs.Wrap(errs.InternalIO, "write variant "+variant.Tag, err)
		}

		rb := resized.Bounds()
		checksum := utils.MD5Hex(buf.Bytes())
		if err := upsertImage(ctx, upload.ID, variant.Tag, path, "image/jpeg", rb.Dx(), rb.Dy(), checksum); err != nil {
			return err
		}
	}

	return nil
}

func detectMime(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// upsertImage is idempotent on (upload_id, variant), per §4.5/§8,
// converging to the same row across at-least-once retries.
func upsertImage(ctx context.Context, uploadID uint64, variant, path, mimeType string, width, height int, checksum string) error {
	img := &model.Image{
		UploadID: uploadID,
		Variant:  variant,
		Path:     path,
		MimeType: mimeType,
		Width:    width,
		Height:   height,
		Checksum: checksum,
	}
	err := repo.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "upload_id"}, {Name: "variant"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"path", "mime_type", "width", "height", "checksum", "updated_at",
		}),
	}).Create(img).Error
	if err != nil {
		return errs.Wrap(errs.InternalIO, "upsert image "+variant, err)
	}
	return nil
}
