package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"iforum/internal/config"
	"iforum/internal/middleware"
	"iforum/internal/models"
	"iforum/internal/observability"
	"iforum/internal/repository"
)

const (
	DefaultGalleryDir           = "/tmp/iforum/gallery"
	DefaultGalleryMaxUploadMB   = 10
	GalleryThumbnailMaxSize     = 256
	GalleryThumbnailWebPQuality = 70
)

type AttachImageInput struct {
	CallerID    uint
	PostID      uint
	Filename    string
	ContentType string
	Content     []byte
}

type GalleryService struct {
	postRepo           repository.PostRepository
	galleryRepo        repository.GalleryRepository
	dir                string
	maxUploadSizeBytes int64
}

func NewGalleryService(postRepo repository.PostRepository, galleryRepo repository.GalleryRepository, cfg *config.Config) *GalleryService {
	dir := DefaultGalleryDir
	maxUploadMB := DefaultGalleryMaxUploadMB

	if cfg != nil {
		if cfg.GalleryDir != "" {
			dir = cfg.GalleryDir
		}
		if cfg.GalleryMaxUploadMB > 0 {
			maxUploadMB = cfg.GalleryMaxUploadMB
		}
	}

	return &GalleryService{
		postRepo:           postRepo,
		galleryRepo:        galleryRepo,
		dir:                dir,
		maxUploadSizeBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// AttachImage validates and stores an uploaded image against a post. Unlike
// post and comment mutations, attaching to someone else's post is an explicit
// forbidden error rather than not-found: the upload endpoint does not shape
// visibility.
func (s *GalleryService) AttachImage(ctx context.Context, in AttachImageInput) (*models.Gallery, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		observability.GalleryUploads.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if post.AuthorID != in.CallerID {
		observability.GalleryUploads.WithLabelValues("forbidden").Inc()
		return nil, models.NewForbiddenError("Only the post author can attach images")
	}

	if len(in.Content) == 0 {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedGalleryMIME(detectedType) {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("Invalid image file")
	}
	mimeType := galleryFormatToMime(format)
	if mimeType == "" {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, mimeType) {
		observability.GalleryUploads.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("Image content type mismatch")
	}

	thumb := resizeToFit(decoded, GalleryThumbnailMaxSize, GalleryThumbnailMaxSize)
	encodedThumb, err := encodeWebP(thumb, GalleryThumbnailWebPQuality)
	if err != nil {
		observability.GalleryUploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	// Date-partitioned relative paths; the UUID keeps paths unique even for
	// identical uploads on the same day.
	now := time.Now().UTC()
	name := uuid.New().String()
	relDir := filepath.ToSlash(filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02")))
	imageRel := filepath.ToSlash(filepath.Join(relDir, name+galleryFormatToExt(format)))
	thumbRel := filepath.ToSlash(filepath.Join(relDir, name+"_thumb.webp"))

	imageAbs := filepath.Join(s.dir, filepath.FromSlash(imageRel))
	thumbAbs := filepath.Join(s.dir, filepath.FromSlash(thumbRel))

	if err := writeBytesToFile(imageAbs, in.Content); err != nil {
		observability.GalleryUploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(thumbAbs, encodedThumb); err != nil {
		_ = os.Remove(imageAbs)
		observability.GalleryUploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	entry := &models.Gallery{
		PostID:        post.ID,
		ImagePath:     imageRel,
		ThumbnailPath: thumbRel,
		MimeType:      mimeType,
		SizeBytes:     int64(len(in.Content)),
	}
	if err := s.galleryRepo.Create(ctx, entry); err != nil {
		_ = os.Remove(imageAbs)
		_ = os.Remove(thumbAbs)
		observability.GalleryUploads.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.GalleryUploads.WithLabelValues("ok").Inc()

	return entry, nil
}

// ListGallery returns every gallery entry, newest first.
func (s *GalleryService) ListGallery(ctx context.Context) ([]models.Gallery, error) {
	return s.galleryRepo.List(ctx)
}

// ListByPost returns the gallery entries attached to one post.
func (s *GalleryService) ListByPost(ctx context.Context, postID uint) ([]models.Gallery, error) {
	return s.galleryRepo.ListByPost(ctx, postID)
}

// RemoveFiles deletes the stored files for the given gallery rows. Missing
// files are ignored; failures are logged and do not propagate.
func (s *GalleryService) RemoveFiles(entries []models.Gallery) {
	for _, e := range entries {
		for _, rel := range []string{e.ImagePath, e.ThumbnailPath} {
			if rel == "" {
				continue
			}
			abs := filepath.Join(s.dir, filepath.FromSlash(rel))
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				middleware.Logger.Warn("failed to remove gallery file", "path", abs, "error", err)
			}
		}
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedGalleryMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func galleryFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func galleryFormatToExt(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return ".jpg"
	case "png":
		return ".png"
	case "webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
