package dto

// UploadChunkResponse is the success body for POST /upload/chunk.
type UploadChunkResponse struct {
	Status        string `json:"status"`
	ReceivedChunk int    `json:"received_chunk"`
}

// CompleteUploadResponse is the success body for POST /upload/complete.
type CompleteUploadResponse struct {
	Status   string `json:"status"`
	UploadID string `json:"upload_id"`
}

// UploadStatusResponse is the body for GET /upload/{upload_id}/status.
type UploadStatusResponse struct {
	UploadID     string `json:"upload_id"`
	Status       string `json:"status"`
	FileSize     int64  `json:"file_size"`
	FileChecksum string `json:"file_checksum"`
}

// UploadReadyResponse is the body for GET /upload/{upload_id}/ready.
type UploadReadyResponse struct {
	Ready bool `json:"ready"`
}

// AttachToProductResponse is the success body for POST /upload/attach-to-product.
type AttachToProductResponse struct {
	Status    string `json:"status"`
	ImageID   uint64 `json:"image_id"`
	ProductID uint64 `json:"product_id"`
	IsPrimary bool   `json:"is_primary"`
}

// AttachPendingResponse is the 202 body when the upload isn't ready yet.
type AttachPendingResponse struct {
	Status         string  `json:"status"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
}
