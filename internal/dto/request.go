package dto

import "mime/multipart"

// UploadChunkRequest is the multipart form for POST /upload/chunk (§6).
type UploadChunkRequest struct {
	UploadID      string                `form:"upload_id" binding:"required"`
	ChunkIndex    int                   `form:"chunk_index" binding:"gte=0"`
	TotalChunks   int                   `form:"total_chunks" binding:"gte=1"`
	ChunkChecksum string                `form:"chunk_checksum" binding:"required"`
	FileName      string                `form:"file_name"`
	FileSize      int64                 `form:"file_size"`
	MimeType      string                `form:"mime_type"`
	Chunk         *multipart.FileHeader `form:"-"`
}

// CompleteUploadRequest is the body for POST /upload/complete (§6).
type CompleteUploadRequest struct {
	UploadID     string `json:"upload_id" binding:"required"`
	FileChecksum string `json:"file_checksum" binding:"required"`
}

// AttachToProductRequest is the body for POST /upload/attach-to-product (§6).
type AttachToProductRequest struct {
	UploadID  string `json:"upload_id" binding:"required"`
	SKU       string `json:"sku" binding:"required"`
	IsPrimary bool   `json:"is_primary"`
}
