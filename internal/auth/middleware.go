package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "auth_user_id"

// RequireToken rejects requests without a valid bearer token. When param is not empty the
// token subject must also equal that route parameter, so users can only act on themselves.
func RequireToken(tokens *TokenService, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims, err := tokens.Validate(strings.TrimSpace(raw))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}
		userID, _ := claims.UserID()

		if param != "" {
			target, err := strconv.ParseInt(c.Params(param), 10, 64)
			if err != nil || target != userID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "token does not belong to this user",
				})
			}
		}

		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserIDFromCtx returns the id stored by RequireToken.
func UserIDFromCtx(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(LocalUserID).(int64)
	return id, ok
}
