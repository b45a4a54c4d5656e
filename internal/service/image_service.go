package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/repository/storage"
	"github.com/gestorloja/gestor-backend/internal/websocket"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85

	// PresignExpiry bounds how long a served image URL stays valid.
	PresignExpiry = 1 * time.Hour
)

var (
	ErrImageTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat             = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData          = errors.New("invalid image data")
	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ImageMetadata contains object paths for the stored image variants
type ImageMetadata struct {
	ID           string `json:"id"`
	ThumbnailKey string `json:"thumbnailKey"`
	DisplayKey   string `json:"displayKey"`
	OriginalKey  string `json:"originalKey"`
}

// ImageService processes product photos and stores their variants
type ImageService struct {
	storage        storage.ImageRepository
	productRepo    domain.ProductRepository
	eventPublisher websocket.EventPublisher
}

// NewImageService creates a new ImageService
func NewImageService(storage storage.ImageRepository, productRepo domain.ProductRepository) *ImageService {
	return &ImageService{storage: storage, productRepo: productRepo}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ImageService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ImageService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ImageService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// AttachProductImage processes an uploaded photo, stores its variants and
// points the product's image at the display variant. A previous image is
// cleaned up best-effort.
func (s *ImageService) AttachProductImage(ctx context.Context, productID int32, data []byte, filename string) (*ImageMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrImageStorageNotConfigured
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	keys := make(map[string]string)

	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("products/%d/%s_%s.jpg", productID, imageID, variant.name)

		key, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupVariants(ctx, keys)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}

		keys[variant.name] = key
	}

	oldKey := product.ImageURL

	displayKey := keys["display"]
	if err := s.productRepo.SetImageURL(productID, &displayKey); err != nil {
		s.cleanupVariants(ctx, keys)
		return nil, err
	}

	if oldKey != nil {
		_ = s.DeleteAllVariants(ctx, *oldKey)
	}

	product.ImageURL = &displayKey
	s.publishEvent(websocket.ProductUpdated(product))

	return &ImageMetadata{
		ID:           imageID,
		ThumbnailKey: keys["thumb"],
		DisplayKey:   keys["display"],
		OriginalKey:  keys["original"],
	}, nil
}

// RemoveProductImage clears the product's image and removes the stored variants
func (s *ImageService) RemoveProductImage(ctx context.Context, productID int32) error {
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product.ImageURL == nil {
		return nil
	}

	key := *product.ImageURL
	if err := s.productRepo.SetImageURL(productID, nil); err != nil {
		return err
	}

	_ = s.DeleteAllVariants(ctx, key)

	product.ImageURL = nil
	s.publishEvent(websocket.ProductUpdated(product))
	return nil
}

// PresignedURL returns a temporary URL for a stored image variant
func (s *ImageService) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrImageStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, objectPath, PresignExpiry)
}

// cleanupVariants removes variants uploaded before a failed operation
func (s *ImageService) cleanupVariants(ctx context.Context, keys map[string]string) {
	for _, key := range keys {
		_ = s.storage.Delete(ctx, key)
	}
}

// DeleteAllVariants deletes all stored variants (thumbnail, display, original)
// of the image the given key belongs to. Best effort.
func (s *ImageService) DeleteAllVariants(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}

	base := extractBaseKey(key)
	if base == "" {
		return s.storage.Delete(ctx, key)
	}

	for _, variant := range []string{"thumb", "display", "original"} {
		_ = s.storage.Delete(ctx, base+"_"+variant+".jpg")
	}

	return nil
}

// extractBaseKey strips the variant suffix from an object key.
// Key format: products/<id>/<uuid>_<variant>.jpg
func extractBaseKey(key string) string {
	for _, suffix := range []string{"_thumb.jpg", "_display.jpg", "_original.jpg"} {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix)
		}
	}
	return ""
}

// GetContentType returns the content type for a file extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
