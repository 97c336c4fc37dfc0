package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"imagevault/internal/dto"
	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/internal/task"
	"imagevault/model"
)

// CompleteUpload assembles the received chunks into the canonical
// blob (§4.4), under a per-upload serialization lock (§5).
func CompleteUpload(ctx context.Context, req dto.CompleteUploadRequest) (*model.Upload, error) {
	lock := repo.NewUploadLock(repo.Redis, req.UploadID, 5*time.Minute)
	if err := lock.Lock(ctx); err != nil {
		return nil, errs.Wrap(errs.InternalIO, "acquire upload lock", err)
	}
	defer lock.Unlock(ctx)

	upload, err := GetUploadByUploadID(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}

	switch upload.Status {
	case model.StatusComplete:
		return upload, nil
	case model.StatusFailed:
		return nil, errs.New(errs.ValidationFailed, "upload has failed and must be recovered before completing")
	}

	if err := setStatus(ctx, upload, model.StatusAssembling); err != nil {
		return nil, err
	}

	indices, err := storage.Default.ListChunks(req.UploadID)
	if err != nil {
		return nil, errs.Wrap(errs.InternalIO, "list chunks", err)
	}
	if len(indices) == 0 {
		_ = setStatus(ctx, upload, model.StatusFailed)
		return nil, errs.New(errs.NoChunks, "no chunks received")
	}
	for i, idx := range indices {
		if idx != i {
			_ = setStatus(ctx, upload, model.StatusFailed)
			return nil, errs.New(errs.MissingChunks, "chunk indices are not contiguous from 0")
		}
	}

	blobName := "original" + filepath.Ext(upload.FileName)
	path, size, checksum, err := concatenateChunks(req.UploadID, blobName, indices)
	if err != nil {
		_ = setStatus(ctx, upload, model.StatusFailed)
		return nil, errs.Wrap(errs.InternalIO, "assemble blob", err)
	}

	if checksum != req.FileChecksum {
		_ = os.Remove(storage.Default.AbsPath(path))
		_ = setStatus(ctx, upload, model.StatusFailed)
		return nil, errs.New(errs.FileChecksumMismatch, "assembled file checksum mismatch")
	}

	err = repo.Db.WithContext(ctx).Model(&model.Upload{}).
		Where("id = ?", upload.ID).
		Updates(map[string]interface{}{
			"file_checksum": checksum,
			"file_size":     size,
			"path":          path,
			"status":        model.StatusAssembling,
		}).Error
	if err != nil {
		return nil, errs.Wrap(errs.InternalIO, "persist assembled upload", err)
	}
	upload.FileChecksum = checksum
	upload.FileSize = size
	upload.Path = path

	if err := task.CreateProcessingJob(ctx, upload.ID); err != nil {
		return nil, errs.Wrap(errs.InternalIO, "enqueue processing job", err)
	}

	_ = storage.Default.DeleteChunkDir(req.UploadID)

	return upload, nil
}

// concatenateChunks streams the chunks in index order into a single
// blob via the store's atomic writer, computing a running MD5 as it
// goes, mirroring the teacher's load-sort-verify-compose shape but
// against a filesystem blob instead of storage.ComposeObject.
func concatenateChunks(uploadID, blobName string, indices []int) (path string, size int64, checksum string, err error) {
	pr, pw := io.Pipe()
	hasher := md5.New()

	readErrCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		for _, idx := range indices {
			rc, err := storage.Default.ReadChunk(uploadID, idx)
			if err != nil {
				readErrCh <- fmt.Errorf("open chunk %d: %w", idx, err)
				return
			}
			_, err = io.Copy(io.MultiWriter(pw, hasher), rc)
			closeErr := rc.Close()
			if err != nil {
				readErrCh <- fmt.Errorf("read chunk %d: %w", idx, err)
				return
			}
			if closeErr != nil {
				readErrCh <- closeErr
				return
			}
		}
		readErrCh <- nil
	}()

	path, size, err = storage.Default.PutBlob(uploadID, blobName, pr)
	if readErr := <-readErrCh; readErr != nil {
		return "", 0, "", readErr
	}
	if err != nil {
		return "", 0, "", err
	}
	return path, size, hex.EncodeToString(hasher.Sum(nil)), nil
}

func setStatus(ctx context.Context, upload *model.Upload, status string) error {
	err := repo.Db.WithContext(ctx).Model(&model.Upload{}).
		Where("id = ?", upload.ID).
		Update("status", status).Error
	if err != nil {
		return errs.Wrap(errs.InternalIO, "update upload status", err)
	}
	upload.Status = status
	return nil
}
