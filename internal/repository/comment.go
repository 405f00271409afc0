package repository

import (
	"context"
	"errors"

	"iforum/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetOwnedByID(ctx context.Context, id, creatorID uint) (*models.Comment, error)
	ListByTarget(ctx context.Context, kind models.EntityKind, objectID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	TargetExists(ctx context.Context, kind models.EntityKind, objectID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// GetOwnedByID narrows the lookup to comments created by creatorID; other
// users' comments surface as not-found.
func (r *commentRepository) GetOwnedByID(ctx context.Context, id, creatorID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByTarget returns the comments attached to exactly (kind, objectID),
// newest first.
func (r *commentRepository) ListByTarget(ctx context.Context, kind models.EntityKind, objectID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND object_id = ?", kind, objectID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// TargetExists resolves the composite key against the table for the given
// kind. Comment writes never reject on a missing target; they use this only
// to log dangling references.
func (r *commentRepository) TargetExists(ctx context.Context, kind models.EntityKind, objectID uint) (bool, error) {
	var model interface{}
	switch kind {
	case models.EntityKindPost:
		model = &models.Post{}
	case models.EntityKindComment:
		model = &models.Comment{}
	case models.EntityKindTag:
		model = &models.Tag{}
	case models.EntityKindGallery:
		model = &models.Gallery{}
	default:
		return false, models.NewValidationError("Unsupported content type")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", objectID).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
