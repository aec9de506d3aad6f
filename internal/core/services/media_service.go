package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"pawnbook/internal/core/domain"
)

// MediaService uploads customer photos, ornament photos and release proof
// images to Cloudinary. When no Cloudinary credentials are configured the
// service is nil-safe: uploads fail with a clear error instead of a panic,
// and the rest of the application works without images.
type MediaService struct {
	client *cloudinary.Cloudinary
	folder string
	log    *zap.Logger
}

// NewMediaService creates a new media service. url is a cloudinary:// URL;
// empty url returns a disabled service.
func NewMediaService(url, folder string, log *zap.Logger) (*MediaService, error) {
	if url == "" {
		log.Warn("⚠️  Cloudinary not configured, image uploads disabled")
		return &MediaService{folder: folder, log: log}, nil
	}

	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	log.Info("✅ Cloudinary connected")
	return &MediaService{client: cld, folder: folder, log: log}, nil
}

// Enabled reports whether uploads are configured.
func (s *MediaService) Enabled() bool {
	return s != nil && s.client != nil
}

// UploadImage uploads a single image and returns its secure URL.
func (s *MediaService) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if !s.Enabled() {
		return "", domain.Invalid("image", "image uploads are not configured")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	result, err := s.client.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:    s.folder,
		PublicID:  publicID(file.Filename),
		Overwrite: func(b bool) *bool { return &b }(true),
	})
	if err != nil {
		s.log.Error("image upload failed", zap.String("filename", file.Filename), zap.Error(err))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// publicID derives a unique public ID from the original filename.
func publicID(filename string) string {
	base := filename[:len(filename)-len(filepath.Ext(filename))]
	return fmt.Sprintf("%s_%d", base, time.Now().Unix())
}
