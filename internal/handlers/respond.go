package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// validationError renders a field→message map with the 409 status the API
// uses for validation failures.
func validationError(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"success": false,
		"error":   errs,
	})
}

// ErrorHandler renders fiber errors as the JSON envelope the rest of the
// API speaks. Unexpected errors become a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
