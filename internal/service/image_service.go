package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultImageMaxUploadSizeMB applies when no positive limit is configured.
const DefaultImageMaxUploadSizeMB = 10

// ImageUpload is a submitted file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageService stores uploaded images addressed by the sha256 of their bytes.
type ImageService struct {
	repo               repository.ImageRepository
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.ImageRepository, maxUploadSizeMB int) *ImageService {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultImageMaxUploadSizeMB
	}
	return &ImageService{
		repo:               repo,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Store saves the upload once per distinct content and returns its record.
// Dimensions are recorded only for formats a registered decoder understands.
func (s *ImageService) Store(ctx context.Context, in ImageUpload) (*models.Image, error) {
	if len(in.Data) == 0 {
		return nil, models.NewFieldValidationError("image", "The submitted file is empty.")
	}
	if int64(len(in.Data)) > s.maxUploadSizeBytes {
		return nil, models.NewFieldValidationError("image",
			fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	hash := ContentHash(in.Data)
	existing, err := s.repo.GetByHash(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}

	record := &models.Image{
		Hash:        hash,
		ContentType: detectContentType(in),
		SizeBytes:   int64(len(in.Data)),
		Data:        in.Data,
	}
	if cfg, format, decodeErr := image.DecodeConfig(bytes.NewReader(in.Data)); decodeErr == nil {
		record.Width = cfg.Width
		record.Height = cfg.Height
		record.ContentType = "image/" + format
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns the stored image with hash.
func (s *ImageService) Get(ctx context.Context, hash string) (*models.Image, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if len(hash) != sha256.Size*2 {
		return nil, models.NewNotFoundError("Image", hash)
	}
	return s.repo.GetByHash(ctx, hash)
}

// ContentHash is the identity of stored bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func detectContentType(in ImageUpload) string {
	detected := http.DetectContentType(in.Data)
	if detected != "application/octet-stream" {
		return normalizeContentType(detected)
	}
	if provided := normalizeContentType(in.ContentType); provided != "" {
		return provided
	}
	if byExt := mime.TypeByExtension(extension(in.Filename)); byExt != "" {
		return normalizeContentType(byExt)
	}
	return detected
}

func normalizeContentType(v string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return strings.ToLower(filename[i:])
	}
	return ""
}
