package service

import (
	"context"
	"strings"

	"iforum/internal/models"
	"iforum/internal/repository"
)

type TagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// ListTags returns all tags, or only tags assigned to at least one post when
// assignedOnly is set.
func (s *TagService) ListTags(ctx context.Context, assignedOnly bool) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, assignedOnly)
}

// CreateTag stores a standalone tag. Post writes reconcile their own tags by
// value; this is the direct creation path.
func (s *TagService) CreateTag(ctx context.Context, value string) (*models.Tag, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, models.NewValidationError("Value is required")
	}
	if len(value) > 100 {
		return nil, models.NewValidationError("Value too long (max 100 characters)")
	}

	tag := &models.Tag{Value: value}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}
