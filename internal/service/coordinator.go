package service

import (
	"bytes"
	"context"

	"imagevault/internal/dto"
	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"
	"imagevault/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UploadChunk receives one chunk (§4.3): validates its checksum,
// lazily creates the upload row on first chunk, rejects chunks once
// the upload is no longer accepting them, and upserts the chunk
// accounting row keyed on (upload_id, chunk_index), mirroring the
// teacher's UploadChunk ON CONFLICT bookkeeping.
func UploadChunk(ctx context.Context, req dto.UploadChunkRequest, body []byte) (int, error) {
	checksum := utils.MD5Hex(body)
	if checksum != req.ChunkChecksum {
		return 0, errs.New(errs.ChunkChecksumMismatch, "chunk checksum mismatch")
	}

	upload, err := getOrCreateUpload(ctx, req)
	if err != nil {
		return 0, err
	}
	if upload.Status != model.StatusUploading {
		return 0, errs.New(errs.NotAcceptingChunks, "upload is not accepting chunks")
	}

	size, err := storage.Default.PutChunk(req.UploadID, req.ChunkIndex, bytes.NewReader(body))
	if err != nil {
		return 0, errs.Wrap(errs.InternalIO, "write chunk", err)
	}

	chunk := &model.Chunk{
		UploadID:      req.UploadID,
		ChunkIndex:    req.ChunkIndex,
		ChunkSize:     size,
		ChunkPath:     storage.Default.ChunkPath(req.UploadID, req.ChunkIndex),
		ChunkChecksum: checksum,
	}
	err = repo.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "upload_id"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"chunk_size", "chunk_path", "chunk_checksum", "updated_at",
		}),
	}).Create(chunk).Error
	if err != nil {
		return 0, errs.Wrap(errs.InternalIO, "upsert chunk", err)
	}

	return req.ChunkIndex, nil
}

// getOrCreateUpload implements the create-if-absent upsert of §4.3
// step 3, tolerating a concurrent first chunk from a retried client.
func getOrCreateUpload(ctx context.Context, req dto.UploadChunkRequest) (*model.Upload, error) {
	var upload model.Upload
	err := repo.Db.WithContext(ctx).Where("upload_id = ?", req.UploadID).First(&upload).Error
	if err == nil {
		return &upload, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errs.Wrap(errs.InternalIO, "load upload", err)
	}

	upload = model.Upload{
		UploadID:    req.UploadID,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		MimeType:    req.MimeType,
		TotalChunks: req.TotalChunks,
		Status:      model.StatusUploading,
	}
	err = repo.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "upload_id"}},
		DoNothing: true,
	}).Create(&upload).Error
	if err != nil {
		return nil, errs.Wrap(errs.InternalIO, "create upload", err)
	}

	// A concurrent creator may have won the race; re-read either way so
	// the caller observes the row actually persisted.
	if err := repo.Db.WithContext(ctx).Where("upload_id = ?", req.UploadID).First(&upload).Error; err != nil {
		return nil, errs.Wrap(errs.InternalIO, "load upload", err)
	}
	return &upload, nil
}

// GetUploadByUploadID loads an upload row by its client-chosen id.
func GetUploadByUploadID(ctx context.Context, uploadID string) (*model.Upload, error) {
	var upload model.Upload
	err := repo.Db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&upload).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.New(errs.NotFound, "upload not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.InternalIO, "load upload", err)
	}
	return &upload, nil
}
