package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"moviedb/internal/models"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders errors that escaped a handler.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("unhandled error", "error", err, "path", c.Path())
	}
	return c.Status(code).JSON(ErrorResponse{Error: msg})
}

// writeError maps store and validation errors to HTTP statuses.
func writeError(c fiber.Ctx, entity string, err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ve.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: entity + " not found"})
	case errors.Is(err, models.ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: entity + " is still referenced by movies"})
	}

	slog.Error("request failed", "entity", entity, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
}
