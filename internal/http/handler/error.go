package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pdfshelf/internal/factory"
	"pdfshelf/internal/http/middleware"
	"pdfshelf/internal/library"
	"pdfshelf/internal/store"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "STORAGE_QUOTA_EXCEEDED")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps the library/store/factory error taxonomy onto the
// standardized response. Every classified failure becomes a user-facing
// message; anything unclassified is an internal error.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, store.ErrQuotaExceeded):
		return writeError(c, fiber.StatusInsufficientStorage, "STORAGE_QUOTA_EXCEEDED", "not enough storage space to save this document")
	case errors.Is(err, store.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "cannot access library")
	case errors.Is(err, factory.ErrUnsupportedContent):
		return writeError(c, fiber.StatusUnprocessableEntity, "UNSUPPORTED_CONTENT", "text contains characters that cannot be rendered; remove them and retry")
	case errors.Is(err, library.ErrHandleExpired):
		return writeError(c, fiber.StatusGone, "HANDLE_EXPIRED", "document handle expired, open the document again")
	case errors.Is(err, library.ErrNameRequired),
		errors.Is(err, library.ErrTitleRequired),
		errors.Is(err, library.ErrDataRequired),
		errors.Is(err, library.ErrInvalidCover),
		errors.Is(err, library.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
