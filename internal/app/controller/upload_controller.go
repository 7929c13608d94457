package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
	"github.com/ikkim/sipit-backend/pkg/logger"
)

type UploadController struct {
	uploadService service.UploadService
}

func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder" binding:"required"` // profiles | reviews
}

// GeneratePresignedURL generates a presigned URL for uploading an image to S3
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	upload, err := ctrl.uploadService.PresignedURL(c.Request.Context(), req.Filename, req.ContentType, req.Folder)
	if err != nil {
		respondError(c, err, "generate upload URL")
		return
	}

	logger.Info("Presigned URL generated", map[string]interface{}{
		"user_id": userID,
		"key":     upload.Key,
	})

	respondData(c, http.StatusOK, upload)
}
