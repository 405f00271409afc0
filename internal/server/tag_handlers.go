package server

import (
	"iforum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags. The assigned_only query parameter (0/1)
// restricts results to tags attached to at least one post.
func (s *Server) GetTags(c *fiber.Ctx) error {
	assignedOnly := c.Query("assigned_only") == "1"

	tags, err := s.tagService.ListTags(c.Context(), assignedOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tags)
}

// CreateTag handles POST /api/tags
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.CreateTag(c.Context(), req.Value)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}
