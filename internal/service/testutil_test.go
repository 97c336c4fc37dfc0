package service

import (
	"fmt"
	"testing"

	"imagevault/config"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupTest wires repo.Db to a fresh in-memory SQLite database and
// storage.Default to a temp-dir FSStore, mirroring the teacher's
// TestMain storage bootstrap but trading the live MySQL/MinIO stack
// for a hermetic one, per the ambient test-tooling decision. Config
// defaults are loaded the same way main() loads them, without the
// network dials InitMysql/InitRedis perform. Each test gets its own
// named in-memory database so table state never leaks across tests.
func setupTest(t *testing.T) *storage.FSStore {
	t.Helper()
	config.InitConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Upload{}, &model.Chunk{}, &model.Image{},
		&model.Product{}, &model.ProductImage{}, &model.ProcessingJob{},
	); err != nil {
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
