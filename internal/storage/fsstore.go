package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FSStore implements Store as a local POSIX filesystem tree rooted at
// root, using write-temp-then-rename for every write (§4.1), grounded
// on the teacher's MinIO-backed Store surface combined with the
// mkdir+temp-file+rename mechanics of a filesystem storage adapter
// elsewhere in the retrieval pack.
type FSStore struct {
	root string
}

// NewFSStore builds a Store rooted at root, creating it if absent.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) tmpDir(uploadID string) string {
	return filepath.Join(s.root, "tmp", uploadID)
}

func (s *FSStore) chunkPath(uploadID string, index int) string {
	return filepath.Join(s.tmpDir(uploadID), fmt.Sprintf("chunk_%d.part", index))
}

func (s *FSStore) uploadDir(uploadID string) string {
	return filepath.Join(s.root, uploadID)
}

// writeAtomic writes r to a temp file beside dest, then renames it
// into place, so a concurrent reader never observes a partial file.
func writeAtomic(dest string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, err
	}
	return size, nil
}

// PutChunk implements Store.
func (s *FSStore) PutChunk(uploadID string, index int, r io.Reader) (int64, error) {
	return writeAtomic(s.chunkPath(uploadID, index), r, 0644)
}

// ReadChunk implements Store.
func (s *FSStore) ReadChunk(uploadID string, index int) (io.ReadCloser, error) {
	return os.Open(s.chunkPath(uploadID, index))
}

// ListChunks implements Store, returning indices in ascending numeric
// order parsed from the filename (§4.4 — a lexical sort of
// chunk_10.part vs chunk_2.part would be wrong).
func (s *FSStore) ListChunks(uploadID string) ([]int, error) {
	entries, err := os.ReadDir(s.tmpDir(uploadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "chunk_") || !strings.HasSuffix(name, ".part") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, "chunk_"), ".part")
		idx, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

// DeleteChunkDir implements Store.
func (s *FSStore) DeleteChunkDir(uploadID string) error {
	err := os.RemoveAll(s.tmpDir(uploadID))
	if err != nil {
		return err
	}
	return nil
}

// ChunkPath implements Store.
func (s *FSStore) ChunkPath(uploadID string, index int) string {
	return s.relPath(s.chunkPath(uploadID, index))
}

// PutBlob implements Store.
func (s *FSStore) PutBlob(uploadID, name string, r io.Reader) (string, int64, error) {
	dest := filepath.Join(s.uploadDir(uploadID), name)
	size, err := writeAtomic(dest, r, 0644)
	if err != nil {
		return "", 0, err
	}
	return s.relPath(dest), size, nil
}

// ReadBlob implements Store.
func (s *FSStore) ReadBlob(uploadID, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.uploadDir(uploadID), name))
}

// BlobPath implements Store.
func (s *FSStore) BlobPath(uploadID, name string) string {
	return s.relPath(filepath.Join(s.uploadDir(uploadID), name))
}

// AbsPath implements Store.
func (s *FSStore) AbsPath(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Exists implements Store.
func (s *FSStore) Exists(relPath string) bool {
	_, err := os.Stat(s.AbsPath(relPath))
	return err == nil
}

func (s *FSStore) relPath(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Init builds the default blob store rooted at root and assigns it to
// Default, mirroring the teacher's storage.InitMinio bootstrap shape.
func Init(root string) error {
	store, err := NewFSStore(root)
	if err != nil {
		return err
	}
	Default = store
	return nil
}
