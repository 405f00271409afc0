package service

import (
	"context"

	"iforum/internal/middleware"
	"iforum/internal/models"
	"iforum/internal/observability"
	"iforum/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
}

type CreateCommentInput struct {
	CreatorID   uint
	Content     string
	ContentType models.EntityKind
	ObjectID    uint
}

type UpdateCommentInput struct {
	CreatorID uint
	CommentID uint
	Content   string
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

const maxCommentLen = 10000

// CreateComment stores a comment against a (content_type, object_id) target.
// The target is not required to exist; a dangling reference is stored as
// given and only logged.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}
	if in.ObjectID == 0 {
		return nil, models.NewValidationError("object_id is required")
	}

	exists, err := s.commentRepo.TargetExists(ctx, in.ContentType, in.ObjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		middleware.Logger.WarnContext(ctx, "comment created against missing target",
			"content_type", string(in.ContentType), "object_id", in.ObjectID)
	}

	comment := &models.Comment{
		CreatorID:   in.CreatorID,
		Content:     in.Content,
		ContentType: in.ContentType,
		ObjectID:    in.ObjectID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.WithLabelValues(string(in.ContentType)).Inc()

	return comment, nil
}

// ListComments returns all comments on one target, newest first.
func (s *CommentService) ListComments(ctx context.Context, kind models.EntityKind, objectID uint) ([]*models.Comment, error) {
	if objectID == 0 {
		return nil, models.NewValidationError("object_id is required")
	}
	return s.commentRepo.ListByTarget(ctx, kind, objectID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// UpdateComment replaces the body of the caller's own comment. The target
// reference is immutable; non-owned comments surface as not-found.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	comment, err := s.commentRepo.GetOwnedByID(ctx, in.CommentID, in.CreatorID)
	if err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the caller's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, creatorID uint) error {
	comment, err := s.commentRepo.GetOwnedByID(ctx, commentID, creatorID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}
