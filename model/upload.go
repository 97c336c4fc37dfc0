package model

import "time"

// Status values for an Upload's state machine (§4.2).
const (
	StatusUploading  = "uploading"
	StatusAssembling = "assembling"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Upload is a chunked-upload session, created lazily on first chunk.
type Upload struct {
	ID uint64 `gorm:"primaryKey"`

	UploadID string `gorm:"column:upload_id;size:36;uniqueIndex;not null"`

	FileName     string `gorm:"column:file_name;size:255;not null"`
	FileSize     int64  `gorm:"column:file_size;not null"`
	FileChecksum string `gorm:"column:file_checksum;size:32"`
	MimeType     string `gorm:"column:mime_type;size:128"`

	TotalChunks int `gorm:"column:total_chunks;not null;default:0"`

	Status string `gorm:"column:status;size:16;not null;default:'uploading';index"`

	// Path is the canonical relative blob path, set once the assembler
	// has written it. Non-null iff the blob exists on the store.
	Path string `gorm:"column:path;size:512"`

	// Metadata is an arbitrary caller-supplied string-keyed map, stored
	// as JSON text since no component in the teacher or pack models a
	// free-form metadata blob worth a third-party library.
	Metadata []byte `gorm:"column:metadata;type:text"`

	UpdatedAt time.Time
	CreatedAt time.Time
}

// TableName returns the database table name.
func (Upload) TableName() string {
	return "upload"
}
