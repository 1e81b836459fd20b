package handlers

import (
	"errors"
	"log"

	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError translates a service error into its status and a sanitized body.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		body := fiber.Map{"message": vErr.Message}
		if len(vErr.Fields) > 0 {
			body["errors"] = vErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, services.ErrUnauthenticated):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Could not validate credentials"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Article not found"})
	case errors.Is(err, services.ErrDuplicateKey):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Article with this EAN code already exists"})
	case errors.Is(err, services.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Database unavailable"})
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

// invalidBody answers requests whose body could not be decoded.
func invalidBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}

// ErrorHandler is the Fiber fallback for errors no handler answered. It never echoes internal error text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		message := fe.Message
		if fe.Code >= fiber.StatusInternalServerError {
			log.Printf("Request %s %s failed: %v", c.Method(), c.Path(), err)
			message = "Internal server error"
		}
		return c.Status(fe.Code).JSON(fiber.Map{"message": message})
	}
	return respondError(c, err)
}
