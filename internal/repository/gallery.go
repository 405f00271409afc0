package repository

import (
	"context"

	"iforum/internal/models"

	"gorm.io/gorm"
)

// GalleryRepository defines persistence operations for post image attachments.
type GalleryRepository interface {
	Create(ctx context.Context, entry *models.Gallery) error
	List(ctx context.Context) ([]models.Gallery, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Gallery, error)
	DeleteByPost(ctx context.Context, postID uint) error
}

type galleryRepository struct {
	db *gorm.DB
}

// NewGalleryRepository returns a new GalleryRepository implementation.
func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) Create(ctx context.Context, entry *models.Gallery) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *galleryRepository) List(ctx context.Context) ([]models.Gallery, error) {
	var entries []models.Gallery
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *galleryRepository) ListByPost(ctx context.Context, postID uint) ([]models.Gallery, error) {
	var entries []models.Gallery
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *galleryRepository) DeleteByPost(ctx context.Context, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Gallery{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
