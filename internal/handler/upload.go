package handler

import (
	"errors"
	"io"
	"net/http"

	"imagevault/internal/dto"
	"imagevault/internal/errs"
	"imagevault/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadChunk handles POST /upload/chunk (§6), decoding the multipart
// form and delegating to service.UploadChunk — no business logic
// lives here, matching the teacher's handler/service split.
func UploadChunk(c *gin.Context) {
	var req dto.UploadChunkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "missing chunk"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot open chunk"})
		return
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot read chunk"})
		return
	}

	received, err := service.UploadChunk(c.Request.Context(), req, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadChunkResponse{Status: "ok", ReceivedChunk: received})
}

// CompleteUpload handles POST /upload/complete (§6).
func CompleteUpload(c *gin.Context) {
	var req dto.CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	upload, err := service.CompleteUpload(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CompleteUploadResponse{Status: "assembled", UploadID: upload.UploadID})
}

// UploadStatus handles GET /upload/{upload_id}/status (§6).
func UploadStatus(c *gin.Context) {
	uploadID := c.Param("upload_id")
	upload, err := service.GetUploadByUploadID(c.Request.Context(), uploadID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadStatusResponse{
		UploadID:     upload.UploadID,
		Status:       upload.Status,
		FileSize:     upload.FileSize,
		FileChecksum: upload.FileChecksum,
	})
}

// UploadReady handles GET /upload/{upload_id}/ready (§6).
func UploadReady(c *gin.Context) {
	uploadID := c.Param("upload_id")
	ready, err := service.IsReady(c.Request.Context(), uploadID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadReadyResponse{Ready: ready})
}

// AttachToProduct handles POST /upload/attach-to-product (§6).
func AttachToProduct(c *gin.Context) {
	var req dto.AttachToProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	result, err := service.AttachToProduct(c.Request.Context(), req)
	if err != nil {
		var pending *service.NotReadyError
		if errors.As(err, &pending) {
			c.JSON(http.StatusAccepted, dto.AttachPendingResponse{
				Status:         pending.Status,
				ProcessingTime: pending.ProcessingTime,
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AttachToProductResponse{
		Status:    "success",
		ImageID:   result.ImageID,
		ProductID: result.ProductID,
		IsPrimary: result.IsPrimary,
	})
}

// writeError maps an abstract error kind (§7) to its HTTP status.
func writeError(c *gin.Context, err error) {
	kind, ok := errs.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusInternalServerError
	switch kind {
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.ValidationFailed, errs.ChunkChecksumMismatch, errs.FileChecksumMismatch,
		errs.NoChunks, errs.MissingChunks, errs.NotAcceptingChunks, errs.NotReady:
		status = http.StatusUnprocessableEntity
	case errs.InconsistentState, errs.ProcessingFailed, errs.ProcessingTimeout, errs.InternalIO:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}
