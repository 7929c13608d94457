package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
)

const UploadURLExpiry = 5 * time.Minute

var (
	allowedUploadFolders = map[string]bool{
		"profiles": true,
		"reviews":  true,
	}
	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
)

// PresignedUpload 클라이언트 직접 업로드용 URL
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

type UploadService interface {
	PresignedURL(ctx context.Context, filename, contentType, folder string) (*PresignedUpload, error)
}

type uploadService struct {
	uploader Uploader
}

func NewUploadService(uploader Uploader) UploadService {
	return &uploadService{uploader: uploader}
}

func (s *uploadService) PresignedURL(ctx context.Context, filename, contentType, folder string) (*PresignedUpload, error) {
	if !allowedUploadFolders[folder] {
		return nil, validationError(apperrors.UploadInvalidFolder, "Folder must be profiles or reviews")
	}
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return nil, validationError(apperrors.UploadInvalidType, "Invalid file type. Only JPEG, PNG, and WebP images are allowed.")
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	uploadURL, err := s.uploader.PresignPut(ctx, key, contentType, UploadURLExpiry)
	if err != nil {
		logger.Error("Failed to generate presigned upload URL", err, map[string]interface{}{
			"folder": folder,
		})
		return nil, err
	}

	return &PresignedUpload{
		UploadURL: uploadURL,
		FileURL:   s.uploader.PublicURL(key),
		Key:       key,
	}, nil
}
