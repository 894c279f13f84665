package middlewares

import (
	"vid-pulse/cmd/server/ctxkeys"
	"vid-pulse/cmd/server/handlers/httperr"
	"vid-pulse/internal/config"
	"vid-pulse/internal/services/users"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Auth returns the middleware gating protected routes. It
//
//   - extracts the access token from the accessToken cookie, falling back
//     to the Authorization: Bearer header
//   - validates signature and expiry against cfg.AccessTokenSecret and
//     requires the access token kind
//   - resolves the token's user_id to a live user (credential fields
//     excluded from the projection) and stores it in Locals so downstream
//     handlers can trust it.
//
// Any problem bubbles up a uniform 401 via the global httperr handler; the
// middleware never mutates state.
func Auth(cfg config.Config, repo users.UsersRepo) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.AccessTokenSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			// Token already verified at this point.
			token := c.Locals("user").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			if kind, _ := claims["token_type"].(string); kind != users.TokenKindAccess {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			idHex, ok := claims["user_id"].(string)
			if !ok || idHex == "" {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			userID, err := bson.ObjectIDFromHex(idHex)
			if err != nil {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			// Token valid but subject deleted is still a 401.
			user, err := repo.FindSanitizedByID(c.Context(), userID)
			if err != nil {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals(ctxkeys.UserIDKey, idHex)
			c.Locals(ctxkeys.CurrentUserKey, user)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})

	return func(c *fiber.Ctx) error {
		// Cookie wins over the header when both are present.
		if tok := c.Cookies(ctxkeys.AccessTokenCookie); tok != "" {
			c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
		}
		return verify(c)
	}
}
