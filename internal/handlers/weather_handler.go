package handlers

import (
	"grocerytracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WeatherHandler serves the dashboard weather widget.
type WeatherHandler struct {
	service *services.WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{
		service: service,
	}
}

// RegisterRoutes registers the weather route behind authRequired.
func (h *WeatherHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/weather", authRequired, h.HandleCurrent)
}

// HandleCurrent returns the current weather for ?city=, the default city when absent.
func (h *WeatherHandler) HandleCurrent(c *fiber.Ctx) error {
	weather, err := h.service.Current(c.UserContext(), c.Query("city"))
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    weather,
	})
}
