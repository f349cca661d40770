package middleware

import (
	"log"
	"strings"

	"grocerytracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader carries the signed token on every authenticated request.
const TokenHeader = "x-auth-token"

// TokenFromRequest reads the token from x-auth-token, falling back to an
// "Authorization: Bearer <token>" header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(TokenHeader)); token != "" {
		return token
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "No authentication token, access denied",
			})
		}

		userID, err := authService.Authenticate(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Token verification failed, authorization denied",
			})
		}

		// Store the user id in Fiber context for subsequent handlers
		c.Locals("user_id", userID)

		return c.Next()
	}
}
