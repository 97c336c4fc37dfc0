package model

import "time"

// Chunk is the accounting row for one received chunk, upserted on
// (upload_id, chunk_index) to tolerate retransmission.
type Chunk struct {
	ID uint64 `gorm:"primaryKey"`

	UploadID string `gorm:"column:upload_id;size:36;not null;uniqueIndex:idx_upload_chunk"`

	ChunkIndex    int    `gorm:"column:chunk_index;not null;uniqueIndex:idx_upload_chunk"`
	ChunkSize     int64  `gorm:"column:chunk_size;not null"`
	ChunkPath     string `gorm:"column:chunk_path;size:512;not null"`
	ChunkChecksum string `gorm:"column:chunk_checksum;size:32;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (Chunk) TableName() string {
	return "chunk"
}
