package handlers

import (
	"errors"
	"log"

	"grocerytracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InternalErrorMessage is the only detail clients see for server faults.
const InternalErrorMessage = "The server has encountered a situation it doesn't know how to handle"

// userID returns the authenticated user id set by middleware.AuthRequired.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// respondError maps a service error to a status code and JSON body.
// notFoundStatus lets a route report missing records as something other than 404.
func respondError(c *fiber.Ctx, err error, notFoundStatus int) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == services.KindInternal {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   InternalErrorMessage,
		})
	}

	status := fiber.StatusBadRequest
	if svcErr.Kind == services.KindNotFound {
		status = notFoundStatus
	}

	body := fiber.Map{
		"success": false,
		"message": svcErr.Message,
	}
	if len(svcErr.Fields) > 0 {
		body["errors"] = svcErr.Fields
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
	})
}
