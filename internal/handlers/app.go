package handlers

import (
	"lager/internal/config"
	"lager/internal/database"
	"lager/internal/middleware"
	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Pool           *database.Pool // nil on the in-memory store
	AuthService    *services.AuthService
	ArticleService *services.ArticleService
	ExportService  *services.ExportService
}

// NewApp builds the Fiber app with middleware and all routes mounted under cfg.APIPrefix.
func NewApp(cfg config.Config, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "lager",
		ErrorHandler: ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.AuthTransport == config.TransportCookie && cfg.AllowedOrigins != "*",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == cfg.APIPrefix+"/health"
		},
	}))

	carrier := CarrierFor(cfg)
	api := app.Group(cfg.APIPrefix)

	// Public routes
	NewSystemHandler(deps.Pool).RegisterRoutes(api)
	NewAuthHandler(deps.AuthService, carrier).RegisterRoutes(api)

	// Protected routes (require a capability token)
	protected := api.Group("", middleware.AuthRequired(deps.AuthService, carrier))
	NewArticleHandler(deps.ArticleService).RegisterRoutes(protected)
	NewExportHandler(deps.ExportService).RegisterRoutes(protected)

	return app
}

// CarrierFor picks the token transport configured by AUTH_TRANSPORT.
func CarrierFor(cfg config.Config) middleware.Carrier {
	if cfg.AuthTransport == config.TransportCookie {
		return middleware.CookieCarrier{
			Name:      cfg.SessionCookieName,
			LoginPath: cfg.LoginPath,
			Secure:    cfg.CookieSecure,
		}
	}
	return middleware.HeaderCarrier{}
}
