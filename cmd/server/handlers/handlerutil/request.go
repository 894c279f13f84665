package handlerutil

import (
	"vid-pulse/cmd/server/ctxkeys"
	"vid-pulse/cmd/server/handlers/httperr"
	"vid-pulse/internal/logger"
	"vid-pulse/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Envelope is the wire shape of every success response.
type Envelope struct {
	StatusCode int    `json:"statusCode" example:"200"`
	Message    string `json:"message" example:"OK"`
	Data       any    `json:"data"`
}

// JSON writes the standard success envelope {statusCode, message, data}.
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// GetUserID extracts the authenticated user id from the fiber context.
func GetUserID(c *fiber.Ctx) (bson.ObjectID, error) {
	userIDStr, ok := c.Locals(ctxkeys.UserIDKey).(string)
	if !ok {
		logger.L().Error("user ID not found in context", "path", c.Path())
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		logger.L().Error("invalid user ID in context", "userIDStr", userIDStr, "path", c.Path(), "error", err)
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	return userID, nil
}

// GetCurrentUser returns the sanitized user resolved by the auth middleware.
func GetCurrentUser(c *fiber.Ctx) (*users.User, error) {
	user, ok := c.Locals(ctxkeys.CurrentUserKey).(*users.User)
	if !ok || user == nil {
		logger.L().Error("current user not found in context", "path", c.Path())
		return nil, httperr.Fail(httperr.ErrUnauthorized)
	}
	return user, nil
}

// ParseAndValidateBody parses the request body (JSON or multipart form
// fields) and validates it.
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := v.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}
