package middleware

import (
	"strings"
	"time"

	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Carrier moves a capability token between client and server.
type Carrier interface {
	// Token extracts the presented token, or "" when none was sent.
	Token(c *fiber.Ctx) string
	// Issue hands a fresh token to the client and returns extra response fields.
	Issue(c *fiber.Ctx, token services.IssuedToken) fiber.Map
	// Clear drops the client-side credential.
	Clear(c *fiber.Ctx)
	// Deny ends a request that failed authentication.
	Deny(c *fiber.Ctx) error
}

// HeaderCarrier reads "Authorization: Bearer <token>" headers.
type HeaderCarrier struct{}

func (HeaderCarrier) Token(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (HeaderCarrier) Issue(c *fiber.Ctx, token services.IssuedToken) fiber.Map {
	return fiber.Map{
		"access_token": token.Token,
		"token_type":   "bearer",
	}
}

// Clear is a no-op: bearer clients discard the token themselves.
func (HeaderCarrier) Clear(c *fiber.Ctx) {}

func (HeaderCarrier) Deny(c *fiber.Ctx) error {
	return unauthorized(c)
}

// CookieCarrier keeps the token in an HttpOnly session cookie.
type CookieCarrier struct {
	Name      string
	LoginPath string
	Secure    bool
}

func (cc CookieCarrier) Token(c *fiber.Ctx) string {
	return c.Cookies(cc.Name)
}

func (cc CookieCarrier) Issue(c *fiber.Ctx, token services.IssuedToken) fiber.Map {
	c.Cookie(cc.cookie(token.Token, token.ExpiresAt))
	return fiber.Map{
		"token_type": "cookie",
	}
}

func (cc CookieCarrier) Clear(c *fiber.Ctx) {
	c.Cookie(cc.cookie("", time.Unix(0, 0)))
}

// Deny redirects browsers to the login entry point and answers API clients with 401.
func (cc CookieCarrier) Deny(c *fiber.Ctx) error {
	if cc.LoginPath != "" && strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
		return c.Redirect(cc.LoginPath, fiber.StatusSeeOther)
	}
	return unauthorized(c)
}

func (cc CookieCarrier) cookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     cc.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   cc.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Could not validate credentials",
	})
}
