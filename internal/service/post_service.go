package service

import (
	"context"
	"time"

	"iforum/internal/models"
	"iforum/internal/observability"
	"iforum/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	galleryRepo repository.GalleryRepository

	// removeFiles deletes the stored image files for a set of gallery rows.
	// Wired to the gallery file store; nil when no store is configured.
	removeFiles func(entries []models.Gallery)
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
	Tags     []string
}

type ListPostsInput struct {
	CallerID      uint
	Authenticated bool
	TagIDs        []uint
}

// UpdatePostInput carries a partial update. Nil fields are left untouched.
// Tags distinguishes omitted (nil, associations unchanged) from present but
// empty (associations cleared).
type UpdatePostInput struct {
	AuthorID uint
	PostID   uint
	Title    *string
	Content  *string
	Tags     *[]string
}

func NewPostService(postRepo repository.PostRepository, galleryRepo repository.GalleryRepository, removeFiles func(entries []models.Gallery)) *PostService {
	return &PostService{
		postRepo:    postRepo,
		galleryRepo: galleryRepo,
		removeFiles: removeFiles,
	}
}

const maxTitleLen = 100

func validatePostFields(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 100 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Title:    in.Title,
		Content:  in.Content,
	}
	if err := s.postRepo.Create(ctx, post, in.Tags); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns the caller's visible set as abbreviated summaries.
// Anonymous callers see published posts only; authenticated callers
// additionally see their own drafts.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.PostSummary, error) {
	posts, err := s.postRepo.List(ctx, repository.PostListFilter{
		CallerID:      in.CallerID,
		Authenticated: in.Authenticated,
		TagIDs:        in.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}

// GetPost retrieves one post under the caller's visibility rules and counts
// the retrieval as a view. Drafts belong to their author alone; everyone else
// gets not-found rather than forbidden.
func (s *PostService) GetPost(ctx context.Context, id, callerID uint, authenticated bool) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Published() && !(authenticated && post.AuthorID == callerID) {
		return nil, models.NewNotFoundError("Post", id)
	}

	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	post.Views++
	observability.PostViews.Inc()

	return post, nil
}

// UpdatePost applies a partial update to the author's own post. Non-owned and
// nonexistent posts are indistinguishable to the caller.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetOwnedByID(ctx, in.PostID, in.AuthorID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if err := validatePostFields(post.Title, post.Content); err != nil {
		return nil, err
	}

	// Field and tag changes commit together; a failed tag reconciliation
	// must not leave a half-applied update behind.
	if in.Tags != nil {
		if err := s.postRepo.UpdateReplacingTags(ctx, post, *in.Tags); err != nil {
			return nil, err
		}
	} else if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost removes the author's own post along with its gallery rows and
// stored image files. File removal is best effort and happens after the
// database delete succeeds.
func (s *PostService) DeletePost(ctx context.Context, postID, authorID uint) error {
	if _, err := s.postRepo.GetOwnedByID(ctx, postID, authorID); err != nil {
		return err
	}

	entries, err := s.galleryRepo.ListByPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.removeFiles != nil && len(entries) > 0 {
		s.removeFiles(entries)
	}
	return nil
}

// PublishPost stamps the post as published. Only the author may publish. The
// timestamp defaults to now; a caller-supplied timestamp is honored, and
// publishing an already-published post re-stamps it rather than failing.
func (s *PostService) PublishPost(ctx context.Context, postID, callerID uint, publishedAt *time.Time) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, models.NewForbiddenError("Only the author can publish a post")
	}

	stamp := time.Now().UTC()
	if publishedAt != nil {
		stamp = publishedAt.UTC()
	}
	post.PublishedAt = &stamp
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsPublished.Inc()

	return post, nil
}
