package middlewares

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/utils"
)

// UserIDKey is the fiber.Locals key holding the authenticated user id
const UserIDKey = "user_id"

// JWTMiddleware validates the bearer token and stores its subject under UserIDKey
func JWTMiddleware(secret string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Authorization header is required",
			})
		}

		// Check if the header starts with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid authorization header format",
			})
		}

		userID, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			log.Debug("jwt validation failed", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid JWT token",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// GetUserIDFromContext retrieves the authenticated user id
func GetUserIDFromContext(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user not found in context")
	}
	return userID, nil
}
