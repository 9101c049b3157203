package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int           `json:"status"`
	Code      string        `json:"code"`    // bad_request, invalid_input, degenerate_geometry, not_found, internal_error
	Message   string        `json:"message"` // Human-readable message
	Details   *ErrorDetails `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// ErrorDetails locates the offending record of an input or geometry error.
type ErrorDetails struct {
	Set      string   `json:"set,omitempty"`
	Index    *int     `json:"index,omitempty"`
	Field    string   `json:"field,omitempty"`
	Row      *int     `json:"row,omitempty"`
	Col      *int     `json:"col,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errFromDomain maps service errors onto the API error envelope:
// invalid input is 400, degenerate geometry 422, missing records 404.
func errFromDomain(c *fiber.Ctx, err error) error {
	var inErr *domain.InputError
	if errors.As(err, &inErr) {
		d := &ErrorDetails{Set: inErr.Set, Field: inErr.Field}
		if inErr.Index >= 0 {
			idx := inErr.Index
			d.Index = &idx
		}
		return writeError(c, APIError{Status: 400, Code: "invalid_input", Message: inErr.Error(), Details: d})
	}

	var geoErr *domain.DegenerateGeometryError
	if errors.As(err, &geoErr) {
		row, col, dist := geoErr.Row, geoErr.Col, geoErr.Distance
		return writeError(c, APIError{
			Status:  422,
			Code:    "degenerate_geometry",
			Message: geoErr.Error(),
			Details: &ErrorDetails{Set: geoErr.Set, Row: &row, Col: &col, Distance: &dist},
		})
	}

	if errors.Is(err, domain.ErrNotFound) {
		return errNotFound(c, err.Error())
	}

	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
