package server

import (
	"io"
	"strconv"

	"iforum/internal/models"
	"iforum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGallery handles GET /api/gallery. An optional post query parameter
// restricts results to one post's images.
func (s *Server) GetGallery(c *fiber.Ctx) error {
	if raw := c.Query("post"); raw != "" {
		postID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || postID == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid post filter"))
		}
		entries, err := s.galleryService.ListByPost(c.Context(), uint(postID))
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(entries)
	}

	entries, err := s.galleryService.ListGallery(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}

// UploadImage handles POST /api/gallery. The request is multipart/form-data
// with a "post" field naming the target post and an "image" file field.
// Attaching to someone else's post is an explicit 403.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	rawPost := c.FormValue("post")
	postID, err := strconv.ParseUint(rawPost, 10, 32)
	if err != nil || postID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post field is required"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("image file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	entry, err := s.galleryService.AttachImage(c.Context(), service.AttachImageInput{
		CallerID:    currentUserID(c),
		PostID:      uint(postID),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
