// Package storage abstracts the blob layer (§4.1) behind a Store
// interface, mirroring the teacher's internal/storage.Store
// abstraction over MinIO, so a filesystem-backed production
// implementation and an in-memory test double can share a contract.
package storage

import "io"

// Store abstracts the session-rooted filesystem namespace of §4.1.
type Store interface {
	// PutChunk atomically writes (write-temp-then-rename) the chunk
	// bytes at tmp/<upload_id>/chunk_<index>.part. Idempotent: a
	// re-send of the same index overwrites.
	PutChunk(uploadID string, index int, r io.Reader) (size int64, err error)

	// ReadChunk opens the chunk file for the given index.
	ReadChunk(uploadID string, index int) (io.ReadCloser, error)

	// ListChunks returns the chunk indices present for uploadID, in
	// ascending numeric order (parsed from the filename, not a lexical
	// sort of the name itself).
	ListChunks(uploadID string) ([]int, error)

	// DeleteChunkDir best-effort removes tmp/<upload_id>.
	DeleteChunkDir(uploadID string) error

	// ChunkPath returns the store-relative path a chunk file has,
	// for accounting bookkeeping (mirrors the teacher's FileChunk.ChunkPath).
	ChunkPath(uploadID string, index int) string

	// PutBlob atomically writes (write-temp-then-rename) a named blob
	// under <upload_id>/<name>, returning its size and relative path.
	PutBlob(uploadID, name string, r io.Reader) (path string, size int64, err error)

	// ReadBlob opens a named blob for reading.
	ReadBlob(uploadID, name string) (io.ReadCloser, error)

	// BlobPath returns the relative path a blob named `name` under
	// uploadID would have, without requiring it to exist.
	BlobPath(uploadID, name string) string

	// AbsPath resolves a store-relative path to an absolute filesystem
	// path, for handing to the job runner.
	AbsPath(relPath string) string

	// Exists reports whether the store-relative path exists.
	Exists(relPath string) bool
}

// Default is the main blob store instance, set by Init.
var Default Store
