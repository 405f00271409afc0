package server

import (
	"strconv"
	"strings"
	"time"

	"iforum/internal/models"
	"iforum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseTagIDs parses the comma-separated "tags" query parameter.
func parseTagIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil || id == 0 {
			return nil, models.NewValidationError("Invalid tags filter")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// GetPosts handles GET /api/posts. Anonymous callers see published posts
// only; authenticated callers additionally see their own drafts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	tagIDs, err := parseTagIDs(c.Query("tags"))
	if err != nil {
		return respondServiceError(c, err)
	}

	callerID, authenticated := s.optionalUserID(c)
	summaries, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		CallerID:      callerID,
		Authenticated: authenticated,
		TagIDs:        tagIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summaries)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	callerID, authenticated := s.optionalUserID(c)
	post, err := s.postService.GetPost(c.Context(), id, callerID, authenticated)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT/PATCH /api/posts/:id. An omitted tags field leaves
// associations untouched; an empty list clears them.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Title   *string   `json:"title"`
		Content *string   `json:"content"`
		Tags    *[]string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		AuthorID: currentUserID(c),
		PostID:   id,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.postService.DeletePost(c.Context(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishPost handles POST /api/posts/:id/publish. The body is optional; a
// published_at field overrides the default timestamp of now.
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		PublishedAt *time.Time `json:"published_at"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	post, err := s.postService.PublishPost(c.Context(), id, currentUserID(c), req.PublishedAt)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
