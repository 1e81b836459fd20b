package handlers

import (
	"context"
	"time"

	"lager/internal/database"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// SystemHandler serves the unauthenticated liveness endpoints.
type SystemHandler struct {
	pool *database.Pool // nil when running on the in-memory store
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(pool *database.Pool) *SystemHandler {
	return &SystemHandler{
		pool: pool,
	}
}

// RegisterRoutes registers the root and health routes.
func (h *SystemHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

// HandleRoot describes the service.
func (h *SystemHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Inventory Management API",
		"version": Version,
	})
}

// HandleHealth always answers 200; the database field reports pool reachability.
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	db := "memory"
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		db = "up"
		if err := h.pool.Ping(ctx); err != nil {
			db = "down"
		}
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"message":  "API is running",
		"database": db,
	})
}
