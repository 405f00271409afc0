package repository

import (
	"context"
	"strings"

	"iforum/internal/cache"
	"iforum/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context, assignedOnly bool) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns all tags, or only tags associated with at least one post when
// assignedOnly is set. Results are served cache-aside per filter variant.
func (r *tagRepository) List(ctx context.Context, assignedOnly bool) ([]models.Tag, error) {
	var tags []models.Tag
	key := cache.TagListKey(assignedOnly)

	err := cache.Aside(ctx, key, &tags, cache.TagListTTL, func() error {
		q := r.db.WithContext(ctx).Model(&models.Tag{}).Order("value ASC")
		if assignedOnly {
			sub := r.db.Table("post_tags").Select("tag_id")
			q = q.Where("tags.id IN (?)", sub)
		}
		return q.Find(&tags).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Tag already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTagLists(ctx)
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
