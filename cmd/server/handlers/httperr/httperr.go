package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// E is the wire shape of every failure: {statusCode, message}. No stack
// traces or internal detail ever reach the client.
type E struct {
	Status  int    `json:"statusCode" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON writes the error envelope
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error into the standard 400 response.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid input: " + err.Error(),
	})
}

// BadRequest builds a 400 with the given message.
func BadRequest(message string) E {
	return E{Status: fiber.StatusBadRequest, Message: message}
}

// Conflict builds a 409 with the given message.
func Conflict(message string) E {
	return E{Status: fiber.StatusConflict, Message: message}
}

// NotFound builds a 404 with the given message.
func NotFound(message string) E {
	return E{Status: fiber.StatusNotFound, Message: message}
}

// InternalError builds a 500 with the given message.
func InternalError(message string) E {
	return E{Status: fiber.StatusInternalServerError, Message: message}
}

// Pre-defined HTTP errors
var (
	ErrBadRequest      = E{Status: 400, Message: "Bad Request"}
	ErrUnauthorized    = E{Status: 401, Message: "Unauthorized"}
	ErrTooManyRequests = E{Status: 429, Message: "Too Many Requests"}
	ErrInternal        = InternalError("Internal Server Error")
)

// Handler is the global error handler for Fiber. Every handler failure
// funnels through here and leaves as the standard envelope.
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.JSON(c)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(E{
			Status:  fiberError.Code,
			Message: fiberError.Message,
		})
	}

	return ErrInternal.JSON(c)
}
