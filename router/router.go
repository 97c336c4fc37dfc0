package router

import (
	"imagevault/internal/handler"

	"github.com/gin-gonic/gin"
)

// InitRouter builds the five-endpoint API surface of §4.8/§6, with no
// auth middleware of its own (the session layer is external per §1).
func InitRouter() *gin.Engine {
	r := gin.Default()

	upload := r.Group("/upload")
	{
		upload.POST("/chunk", handler.UploadChunk)
		upload.POST("/complete", handler.CompleteUpload)
		upload.GET("/:upload_id/status", handler.UploadStatus)
		upload.GET("/:upload_id/ready", handler.UploadReady)
		upload.POST("/attach-to-product", handler.AttachToProduct)
	}
	return r
}
