package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"
	"imagevault/utils"
)

// CompleteUpload itself takes the Redis upload lock and publishes a
// processing job to RabbitMQ, so no test in this package calls it;
// these tests cover the deterministic assembly core in isolation.

func TestConcatenateChunksOrdersByIndexNotInsertionOrder(t *testing.T) {
	store := setupTest(t)
	_ = store
	if _, err := storage.Default.PutChunk("up-asm-1", 2, bytes.NewReader([]byte("ccc"))); err != nil {
		t.Fatalf("PutChunk(2): %v", err)
	}
	if _, err := storage.Default.PutChunk("up-asm-1", 0, bytes.NewReader([]byte("aaa"))); err != nil {
		t.Fatalf("PutChunk(0): %v", err)
	}
	if _, err := storage.Default.PutChunk("up-asm-1", 1, bytes.NewReader([]byte("bbb"))); err != nil {
		t.Fatalf("PutChunk(1): %v", err)
	}

	path, size, checksum, err := concatenateChunks("up-asm-1", "original.bin", []int{0, 1, 2})
	if err != nil {
		t.Fatalf("concatenateChunks: %v", err)
	}
	if size != 9 {
		t.Fatalf("size = %d, want 9", size)
	}
	if checksum != utils.MD5Hex([]byte("aaabbbccc")) {
		t.Fatalf("checksum mismatch")
	}

	rc, err := storage.Default.ReadBlob("up-asm-1", "original.bin")
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "aaabbbccc" {
		t.Fatalf("got %q, want %q", got, "aaabbbccc")
	}
	if path != storage.Default.BlobPath("up-asm-1", "original.bin") {
		t.Fatalf("path = %q", path)
	}
}

func TestConcatenateChunksErrorsOnMissingChunk(t *testing.T) {
	setupTest(t)
	if _, err := storage.Default.PutChunk("up-asm-2", 0, bytes.NewReader([]byte("aaa"))); err != nil {
		t.Fatalf("PutChunk: %v", err)
	}

	_, _, _, err := concatenateChunks("up-asm-2", "original.bin", []int{0, 1})
	if err == nil {
		t.Fatal("expected error for missing chunk 1")
	}
}

func TestSetStatusPersistsAndUpdatesInMemory(t *testing.T) {
	setupTest(t)
	upload := &model.Upload{UploadID: "up-asm-3", FileName: "a.jpg", Status: model.StatusUploading}
	if err := repo.Db.Create(upload).Error; err != nil {
		t.Fatalf("create upload: %v", err)
	}

	if err := setStatus(context.Background(), upload, model.StatusAssembling); err != nil {
		t.Fatalf("setStatus: %v", err)
	}
	if upload.Status != model.StatusAssembling {
		t.Fatalf("in-memory status = %q, want %q", upload.Status, model.StatusAssembling)
	}

	var reloaded model.Upload
	if err := repo.Db.First(&reloaded, upload.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.StatusAssembling {
		t.Fatalf("persisted status = %q, want %q", reloaded.Status, model.StatusAssembling)
	}
}
