package handlers

import (
	"log"

	"grocerytracker/internal/models"
	"grocerytracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GroceryHandler handles HTTP requests for grocery entries.
type GroceryHandler struct {
	service *services.GroceryService
}

// NewGroceryHandler creates a new GroceryHandler.
func NewGroceryHandler(service *services.GroceryService) *GroceryHandler {
	return &GroceryHandler{
		service: service,
	}
}

// RegisterRoutes registers the entry routes behind authRequired.
func (h *GroceryHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	entryRoutes := router.Group("/entries", authRequired)
	entryRoutes.Post("/", h.HandleAddEntry)
	entryRoutes.Get("/", h.HandleListEntries)
	entryRoutes.Delete("/:id", h.HandleDeleteEntry)

	router.Get("/summary", authRequired, h.HandleSummary)
}

// HandleAddEntry creates a new entry for the authenticated user.
func (h *GroceryHandler) HandleAddEntry(c *fiber.Ctx) error {
	var in services.NewEntryInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}

	entry, err := h.service.AddEntry(c.UserContext(), userID(c), in)
	if err != nil {
		log.Printf("Error adding grocery entry: %v", err)
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    entry,
	})
}

// HandleListEntries lists the user's entries, optionally for ?date=YYYY-MM-DD.
func (h *GroceryHandler) HandleListEntries(c *fiber.Ctx) error {
	var (
		entries []models.GroceryEntry
		err     error
	)
	if date := c.Query("date"); date != "" {
		entries, err = h.service.ListEntriesOn(c.UserContext(), userID(c), date)
	} else {
		entries, err = h.service.ListEntries(c.UserContext(), userID(c))
	}
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(entries),
		"data":    entries,
	})
}

// HandleDeleteEntry deletes one of the user's entries.
func (h *GroceryHandler) HandleDeleteEntry(c *fiber.Ctx) error {
	entryID := c.Params("id")
	if err := h.service.DeleteEntry(c.UserContext(), entryID, userID(c)); err != nil {
		log.Printf("Error deleting grocery entry %s: %v", entryID, err)
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}

// HandleSummary returns the income/expense/balance tiles.
func (h *GroceryHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), userID(c), c.Query("date"))
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
