package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/coursedesk/chat-service/internal/auth"
)

// JWTAuthMiddleware verifies the bearer token and stores the principal's
// user id in c.Locals("user_id").
func JWTAuthMiddleware(jv *auth.JWTValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}
		sub, err := jv.Validate(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals("user_id", sub)
		return c.Next()
	}
}
