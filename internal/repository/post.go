// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"iforum/internal/cache"
	"iforum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostListFilter describes the caller-dependent shape of a post listing.
// CallerID is 0 for anonymous callers.
type PostListFilter struct {
	CallerID      uint
	Authenticated bool
	TagIDs        []uint
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagValues []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetOwnedByID(ctx context.Context, id, authorID uint) (*models.Post, error)
	List(ctx context.Context, f PostListFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateReplacingTags(ctx context.Context, post *models.Post, tagValues []string) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tagValues []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		tags, err := getOrCreateTags(tx, tagValues)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Model(post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTagLists(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Tags").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetOwnedByID narrows the lookup to rows authored by authorID. A post owned
// by someone else surfaces as not-found, never as forbidden.
func (r *postRepository) GetOwnedByID(ctx context.Context, id, authorID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND author_id = ?", id, authorID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f PostListFilter) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Preload("Tags")

	if len(f.TagIDs) > 0 {
		sub := r.db.Table("post_tags").Select("post_id").Where("tag_id IN ?", f.TagIDs)
		q = q.Where("posts.id IN (?)", sub)
	}

	if f.Authenticated {
		// Own posts in any state, everyone else's only when published.
		q = q.Where("posts.author_id = ? OR posts.published_at IS NOT NULL", f.CallerID).
			Order("posts.created_at DESC")
	} else {
		q = q.Where("posts.published_at IS NOT NULL").
			Order("posts.published_at DESC")
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateReplacingTags saves the post's fields and swaps its tag set for the
// resolved tags in one transaction, so a failed tag reconciliation rolls back
// the field changes too. An empty value list empties the association.
func (r *postRepository) UpdateReplacingTags(ctx context.Context, post *models.Post, tagValues []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		tags, err := getOrCreateTags(tx, tagValues)
		if err != nil {
			return err
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTagLists(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(&models.Post{ID: id}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTagLists(ctx)
	return nil
}

// IncrementViews bumps the counter with a single UPDATE so concurrent
// retrievals never lose an increment.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// getOrCreateTags resolves each value to an existing tag or creates it. A
// unique-constraint race with a concurrent writer falls back to the row the
// winner created.
func getOrCreateTags(tx *gorm.DB, values []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(values))
	for _, v := range values {
		var tag models.Tag
		err := tx.Where("value = ?", v).FirstOrCreate(&tag, models.Tag{Value: v}).Error
		if err != nil {
			if isUniqueConstraintError(err) {
				if err := tx.Where("value = ?", v).First(&tag).Error; err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
