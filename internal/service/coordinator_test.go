package service

import (
	"context"
	"testing"

	"imagevault/internal/dto"
	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/model"
	"imagevault/utils"
)

func chunkRequest(uploadID string, index int, body []byte) dto.UploadChunkRequest {
	return dto.UploadChunkRequest{
		UploadID:      uploadID,
		ChunkIndex:    index,
		TotalChunks:   2,
		ChunkChecksum: utils.MD5Hex(body),
		FileName:      "photo.jpg",
		FileSize:      1024,
		MimeType:      "image/jpeg",
	}
}

func TestUploadChunkRejectsBadChecksum(t *testing.T) {
	setupTest(t)
	body := []byte("chunk-bytes")
	req := chunkRequest("up-1", 0, body)
	req.ChunkChecksum = "not-the-real-checksum"

	_, err := UploadChunk(context.Background(), req, body)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := errs.KindOf(err); kind != errs.ChunkChecksumMismatch {
		t.Fatalf("kind = %q, want %q", kind, errs.ChunkChecksumMismatch)
	}
}

func TestUploadChunkCreatesUploadOnFirstChunk(t *testing.T) {
	setupTest(t)
	body := []byte("first chunk")
	req := chunkRequest("up-2", 0, body)

	received, err := UploadChunk(context.Background(), req, body)
	if err != nil {
		t.Fatalf("UploadChunk: %v", err)
	}
	if received != 0 {
		t.Fatalf("received = %d, want 0", received)
	}

	upload, err := GetUploadByUploadID(context.Background(), "up-2")
	if err != nil {
		t.Fatalf("GetUploadByUploadID: %v", err)
	}
	if upload.Status != model.StatusUploading {
		t.Fatalf("status = %q, want %q", upload.Status, model.StatusUploading)
	}
	if upload.FileName != "photo.jpg" {
		t.Fatalf("file name = %q", upload.FileName)
	}

	var chunk model.Chunk
	if err := repo.Db.Where("upload_id = ? AND chunk_index = ?", "up-2", 0).First(&chunk).Error; err != nil {
		t.Fatalf("load chunk: %v", err)
	}
	if chunk.ChunkChecksum != utils.MD5Hex(body) {
		t.Fatalf("chunk checksum mismatch")
	}
}

func TestUploadChunkRetransmitIsIdempotent(t *testing.T) {
	setupTest(t)
	body := []byte("retransmitted chunk")
	req := chunkRequest("up-3", 0, body)

	if _, err := UploadChunk(context.Background(), req, body); err != nil {
		t.Fatalf("first UploadChunk: %v", err)
	}
	if _, err := UploadChunk(context.Background(), req, body); err != nil {
		t.Fatalf("second UploadChunk: %v", err)
	}

	var count int64
	if err := repo.Db.Model(&model.Chunk{}).Where("upload_id = ? AND chunk_index = ?", "up-3", 0).Count(&count).Error; err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestUploadChunkRejectsOnceNotUploading(t *testing.T) {
	setupTest(t)
	body := []byte("a chunk")
	req := chunkRequest("up-4", 0, body)
	if _, err := UploadChunk(context.Background(), req, body); err != nil {
		t.Fatalf("UploadChunk: %v", err)
	}

	if err := repo.Db.Model(&model.Upload{}).Where("upload_id = ?", "up-4").Update("status", model.StatusComplete).Error; err != nil {
		t.Fatalf("force status: %v", err)
	}

	req2 := chunkRequest("up-4", 1, body)
	_, err := UploadChunk(context.Background(), req2, body)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := errs.KindOf(err); kind != errs.NotAcceptingChunks {
		t.Fatalf("kind = %q, want %q", kind, errs.NotAcceptingChunks)
	}
}

func TestGetUploadByUploadIDNotFound(t *testing.T) {
	setupTest(t)
	_, err := GetUploadByUploadID(context.Background(), "does-not-exist")
	if kind, _ := errs.KindOf(err); kind != errs.NotFound {
		t.Fatalf("kind = %q, want %q", kind, errs.NotFound)
	}
}
