package handlers

import (
	"log"

	"grocerytracker/internal/middleware"
	"grocerytracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and tokens.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the account routes. rateLimit guards registration
// and login, authRequired guards the profile routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, rateLimit, authRequired fiber.Handler) {
	router.Post("/registration", rateLimit, h.HandleRegister)
	router.Post("/login", rateLimit, h.HandleLogin)
	router.Post("/validToken", h.HandleValidToken)
	router.Get("/user", authRequired, h.HandleGetUser)
	router.Delete("/user", authRequired, h.HandleDeleteUser)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), in)
	if err != nil {
		log.Printf("Error registering user %s: %v", in.Email, err)
		return respondError(c, err, fiber.StatusBadRequest)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    user.View(),
	})
}

// HandleLogin checks credentials and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), in)
	if err != nil {
		log.Printf("Error during login for %s: %v", in.Email, err)
		// Unknown accounts are a plain client error on login.
		return respondError(c, err, fiber.StatusBadRequest)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   result.Token,
		"data":    result.User,
	})
}

// HandleValidToken answers true or false for the token in the request headers.
func (h *AuthHandler) HandleValidToken(c *fiber.Ctx) error {
	token := middleware.TokenFromRequest(c)
	return c.JSON(h.authService.ValidateToken(c.UserContext(), token))
}

// HandleGetUser returns the profile of the authenticated user, or false.
func (h *AuthHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), userID(c))
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			return c.JSON(false)
		}
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user.View(),
	})
}

// HandleDeleteUser deletes the authenticated user's account.
func (h *AuthHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id := userID(c)
	deleted, err := h.authService.DeleteUser(c.UserContext(), id)
	if err != nil {
		log.Printf("Error deleting user %s: %v", id, err)
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    deleted.View(),
	})
}
