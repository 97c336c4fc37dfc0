package task

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRetentionTest(t *testing.T) *storage.FSStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Upload{}, &model.Chunk{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	repo.Db = db

	store, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	storage.Default = store
	return store
}

func TestSweepRetentionRemovesOnlyStaleFailedUploads(t *testing.T) {
	store := setupRetentionTest(t)

	stale := &model.Upload{UploadID: "up-ret-1", FileName: "a.jpg", Status: model.StatusFailed}
	if err := repo.Db.Create(stale).Error; err != nil {
		t.Fatalf("create stale upload: %v", err)
	}
	repo.Db.Model(stale).UpdateColumn("updated_at", time.Now().Add(-48*time.Hour))

	fresh := &model.Upload{UploadID: "up-ret-2", FileName: "b.jpg", Status: model.StatusFailed}
	if err := repo.Db.Create(fresh).Error; err != nil {
		t.Fatalf("create fresh upload: %v", err)
	}

	active := &model.Upload{UploadID: "up-ret-3", FileName: "c.jpg", Status: model.StatusUploading}
	if err := repo.Db.Create(active).Error; err != nil {
		t.Fatalf("create active upload: %v", err)
	}
	repo.Db.Model(active).UpdateColumn("updated_at", time.Now().Add(-48*time.Hour))

	if _, err := store.PutChunk("up-ret-1", 0, strings.NewReader("x")); err != nil {
		t.Fatalf("PutChunk stale: %v", err)
	}
	if _, err := store.PutChunk("up-ret-2", 0, strings.NewReader("y")); err != nil {
		t.Fatalf("PutChunk fresh: %v", err)
	}
	if _, err := store.PutChunk("up-ret-3", 0, strings.NewReader("z")); err != nil {
		t.Fatalf("PutChunk active: %v", err)
	}

	if err := SweepRetention(context.Background(), 24*time.Hour); err != nil {
		t.Fatalf("SweepRetention: %v", err)
	}

	staleIndices, err := store.ListChunks("up-ret-1")
	if err != nil {
		t.Fatalf("ListChunks stale: %v", err)
	}
	if len(staleIndices) != 0 {
		t.Fatalf("expected stale upload's chunk dir removed, got %v", staleIndices)
	}

	freshIndices, err := store.ListChunks("up-ret-2")
	if err != nil {
		t.Fatalf("ListChunks fresh: %v", err)
	}
	if len(freshIndices) != 1 {
		t.Fatalf("expected fresh failed upload's chunks untouched, got %v", freshIndices)
	}

	activeIndices, err := store.ListChunks("up-ret-3")
	if err != nil {
		t.Fatalf("ListChunks active: %v", err)
	}
	if len(activeIndices) != 1 {
		t.Fatalf("expected stale non-failed upload's chunks untouched, got %v", activeIndices)
	}
}
