package handlers

import (
	"errors"
	"log"

	"lager/internal/middleware"
	"lager/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	carrier     middleware.Carrier
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, carrier middleware.Carrier) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		carrier:     carrier,
		validate:    services.NewValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/verify", middleware.AuthRequired(h.authService, h.carrier), h.HandleVerify)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// HandleLogin exchanges the admin password for a capability token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	// Validate the login request
	if err := services.ValidateStruct(h.validate, req); err != nil {
		return respondError(c, err)
	}

	issued, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Printf("Login failed from %s", c.IP())
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid password",
			})
		}
		return respondError(c, err)
	}

	body := h.carrier.Issue(c, issued)
	body["message"] = "Login successful"
	body["expires_at"] = issued.ExpiresAt
	return c.JSON(body)
}

// HandleLogout clears the client-side credential. Issued tokens stay valid until they expire.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.carrier.Clear(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// HandleVerify reports the claims of the presented token.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return respondError(c, services.ErrUnauthenticated)
	}
	return c.JSON(fiber.Map{
		"authenticated": claims.Authenticated,
		"expires_at":    claims.ExpiresAt.Time,
	})
}
