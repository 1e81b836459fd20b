package middleware

import (
	"log"

	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the Locals key holding the validated *services.Claims.
const ClaimsKey = "claims"

// AuthRequired is a Fiber middleware that only lets requests with a valid capability token through.
func AuthRequired(authService *services.AuthService, carrier Carrier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authService.ValidateToken(carrier.Token(c))
		if err != nil {
			log.Printf("Rejected %s %s: %v", c.Method(), c.Path(), err)
			return carrier.Deny(c)
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims attached by AuthRequired, or nil.
func ClaimsFrom(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(ClaimsKey).(*services.Claims)
	return claims
}
