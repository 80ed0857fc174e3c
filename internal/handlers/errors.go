package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"warbler/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status and writes the JSON
// error body.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var dup *models.DuplicateIdentityError
	switch {
	case errors.As(err, &dup):
		status = fiber.StatusConflict
		body["field"] = dup.Field
		body["error"] = dup.Error()
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrAuthMismatch):
		status = fiber.StatusUnauthorized
		body["error"] = models.ErrAuthMismatch.Error()
	case errors.Is(err, models.ErrDuplicateIdentity), errors.Is(err, models.ErrConflictEdge):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrSelfFollow), errors.Is(err, models.ErrInvalidMessage),
		errors.Is(err, models.ErrPasswordTooLong):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		slog.Error(message, "path", c.Path(), "error", err)
		body["error"] = "internal server error"
	}
	return c.Status(status).JSON(body)
}

// bindBody decodes and validates the request body into req. It returns the
// 400 response body on failure and nil on success.
func bindBody(c *fiber.Ctx, validate *validator.Validate, req interface{}) fiber.Map {
	if err := c.BodyParser(req); err != nil {
		slog.Debug("error parsing request body", "path", c.Path(), "error", err)
		return fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		}
	}

	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			}
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		}
	}
	return nil
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, c.Params(name), models.ErrNotFound)
	}
	return uint(id), nil
}
