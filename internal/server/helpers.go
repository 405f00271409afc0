package server

import (
	"errors"
	"strconv"

	"iforum/internal/middleware"
	"iforum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam extracts a positive integer :id path parameter.
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid ID")
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user ID installed by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// optionalUserID extracts the caller identity without enforcing auth, for the
// anonymous-permitted read endpoints that still shape results per caller.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	return middleware.OptionalUserID(c, s.config.JWTSecret)
}

// respondServiceError translates service-layer AppError codes to HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case models.CodeForbidden:
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
