package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"iforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	getOwnedByIDFn func(context.Context, uint, uint) (*models.Comment, error)
	listByTargetFn func(context.Context, models.EntityKind, uint) ([]*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, uint) error
	targetExistsFn func(context.Context, models.EntityKind, uint) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetOwnedByID(ctx context.Context, id, creatorID uint) (*models.Comment, error) {
	return s.getOwnedByIDFn(ctx, id, creatorID)
}
func (s *commentRepoStub) ListByTarget(ctx context.Context, kind models.EntityKind, objectID uint) ([]*models.Comment, error) {
	return s.listByTargetFn(ctx, kind, objectID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) TargetExists(ctx context.Context, kind models.EntityKind, objectID uint) (bool, error) {
	return s.targetExistsFn(ctx, kind, objectID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		getOwnedByIDFn: func(_ context.Context, _, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByTargetFn: func(_ context.Context, _ models.EntityKind, _ uint) ([]*models.Comment, error) {
			return nil, nil
		},
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		targetExistsFn: func(_ context.Context, _ models.EntityKind, _ uint) (bool, error) { return true, nil },
	}
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateCommentInput
	}{
		{
			name:  "empty content",
			input: CreateCommentInput{CreatorID: 1, ContentType: models.EntityKindPost, ObjectID: 1},
		},
		{
			name: "content too long",
			input: CreateCommentInput{
				CreatorID: 1, Content: strings.Repeat("x", 10001),
				ContentType: models.EntityKindPost, ObjectID: 1,
			},
		},
		{
			name:  "missing object id",
			input: CreateCommentInput{CreatorID: 1, Content: "hi", ContentType: models.EntityKindPost},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateComment(ctx, tc.input)
			assertValidationError(t, err)
		})
	}
}

func TestCommentService_CreateComment_StampsCreator(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	repo := noopCommentRepo()
	repo.createFn = func(_ context.Context, comment *models.Comment) error {
		created = comment
		comment.ID = 11
		return nil
	}

	svc := NewCommentService(repo)
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		CreatorID:   42,
		Content:     "nice post",
		ContentType: models.EntityKindPost,
		ObjectID:    7,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(42), created.CreatorID)
	assert.Equal(t, models.EntityKindPost, created.ContentType)
	assert.Equal(t, uint(7), created.ObjectID)
	assert.Equal(t, uint(11), comment.ID)
}

func TestCommentService_CreateComment_DanglingTargetAccepted(t *testing.T) {
	t.Parallel()

	repo := noopCommentRepo()
	repo.targetExistsFn = func(_ context.Context, _ models.EntityKind, _ uint) (bool, error) {
		return false, nil
	}

	svc := NewCommentService(repo)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		CreatorID:   1,
		Content:     "into the void",
		ContentType: models.EntityKindGallery,
		ObjectID:    123456,
	})
	assert.NoError(t, err, "a missing target must not reject the comment")
}

func TestCommentService_UpdateComment(t *testing.T) {
	t.Parallel()

	t.Run("owner updates body only", func(t *testing.T) {
		t.Parallel()

		existing := &models.Comment{
			ID: 5, CreatorID: 1, Content: "old",
			ContentType: models.EntityKindPost, ObjectID: 9,
		}
		repo := noopCommentRepo()
		repo.getOwnedByIDFn = func(_ context.Context, _, _ uint) (*models.Comment, error) {
			return existing, nil
		}

		svc := NewCommentService(repo)
		updated, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			CreatorID: 1, CommentID: 5, Content: "new",
		})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Content)
		// The target reference never moves.
		assert.Equal(t, models.EntityKindPost, updated.ContentType)
		assert.Equal(t, uint(9), updated.ObjectID)
	})

	t.Run("non-owner gets not-found", func(t *testing.T) {
		t.Parallel()

		repo := noopCommentRepo()
		repo.getOwnedByIDFn = func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}

		svc := NewCommentService(repo)
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			CreatorID: 2, CommentID: 5, Content: "hijack",
		})
		require.Error(t, err)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestCommentService_ListComments_RequiresObjectID(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo())
	_, err := svc.ListComments(context.Background(), models.EntityKindPost, 0)
	assertValidationError(t, err)
}
