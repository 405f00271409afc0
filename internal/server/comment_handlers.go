package server

import (
	"strconv"

	"iforum/internal/models"
	"iforum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comments. Both content_type and object_id are
// required; the result is all comments on that one target, newest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	kind, err := models.ParseEntityKind(c.Query("content_type"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	objectID, err := strconv.ParseUint(c.Query("object_id"), 10, 32)
	if err != nil || objectID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("object_id is required"))
	}

	comments, err := s.commentService.ListComments(c.Context(), kind, uint(objectID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentService.GetComment(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/comments. The creator is always the
// authenticated caller; any creator field in the body is ignored.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content     string `json:"content"`
		ContentType string `json:"content_type"`
		ObjectID    uint   `json:"object_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	kind, err := models.ParseEntityKind(req.ContentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		CreatorID:   currentUserID(c),
		Content:     req.Content,
		ContentType: kind,
		ObjectID:    req.ObjectID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT/PATCH /api/comments/:id. Only the comment body is
// mutable; the target reference never changes after creation.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		CreatorID: currentUserID(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.commentService.DeleteComment(c.Context(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
