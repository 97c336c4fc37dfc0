package model

import "time"

// Variant tags recognized by the pipeline (§4.5).
const (
	VariantOriginal = "original"
	Variant256      = "256"
	Variant512      = "512"
	Variant1024     = "1024"
)

// Image is one produced variant of an upload, upserted on
// (upload_id, variant) so the at-least-once job runner converges.
type Image struct {
	ID uint64 `gorm:"primaryKey"`

	UploadID uint64 `gorm:"column:upload_id;not null;uniqueIndex:idx_upload_variant"`
	Variant  string `gorm:"column:variant;size:16;not null;uniqueIndex:idx_upload_variant"`

	Path     string `gorm:"column:path;size:512;not null"`
	MimeType string `gorm:"column:mime_type;size:64;not null"`
	Width    int    `gorm:"column:width;not null"`
	Height   int    `gorm:"column:height;not null"`
	Checksum string `gorm:"column:checksum;size:32;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (Image) TableName() string {
	return "image"
}
