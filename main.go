package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lager/internal/config"
	"lager/internal/database"
	"lager/internal/handlers"
	"lager/internal/models"
	"lager/internal/repositories"
	"lager/internal/services"
	"lager/pkg/rabbitmq"

	"github.com/shopspring/decimal"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize Store ---
	ctx := context.Background()
	repo, pool, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize article store: %v", err)
	}

	if cfg.SeedDemoData {
		seedArticles(ctx, repo)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ disabled: %v", err)
		} else {
			publisher = mqClient
		}
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(services.NewAdminVerifier(cfg.AdminPassword), cfg.JWTSecret, cfg.TokenTTL)
	articleService := services.NewArticleService(repo, publisher)
	exportService := services.NewExportService(repo)

	// --- Initialize Fiber App ---
	app := handlers.NewApp(cfg, handlers.Dependencies{
		Pool:           pool,
		AuthService:    authService,
		ArticleService: articleService,
		ExportService:  exportService,
	})

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s (auth transport: %s)", cfg.AppPort, cfg.AuthTransport)
		var err error
		if cfg.TLSEnabled() {
			err = app.ListenTLS(cfg.AppPort, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = app.Listen(cfg.AppPort)
		}
		if err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if err := pool.Close(); err != nil {
		log.Printf("Error closing database pool: %v", err)
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	log.Println("Server gracefully stopped")
}

// openStore opens the configured article store. The pool is nil for the in-memory driver.
func openStore(ctx context.Context, cfg config.Config) (repositories.ArticleRepository, *database.Pool, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Println("Using in-memory article store")
		return repositories.NewMemoryArticleRepository(), nil, nil
	}

	pool, err := database.Open(ctx, database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DSN(),
		MinConns:        cfg.PoolMin,
		MaxConns:        cfg.PoolMax,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repositories.NewGORMArticleRepository(pool), pool, nil
}

// seedArticles populates the store with demo data. Existing EAN codes are left alone.
func seedArticles(ctx context.Context, repo repositories.ArticleRepository) {
	description := func(s string) *string { return &s }
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	articles := []models.Article{
		{EANCode: "4006381333931", Name: "Ballpoint Pen", Description: description("Blue ink, medium tip"), Quantity: 120, Price: price("1.20")},
		{EANCode: "5901234123457", Name: "Notebook A5", Description: description("80 sheets, squared"), Quantity: 45, Price: price("3.49")},
		{EANCode: "7350053850019", Name: "Stapler", Quantity: 0, Price: price("12.90")},
	}

	for i := range articles {
		err := repo.Create(ctx, &articles[i])
		switch {
		case err == nil:
			log.Printf("Seeded article: %s (EAN: %s)", articles[i].Name, articles[i].EANCode)
		case errors.Is(err, repositories.ErrDuplicateKey):
			log.Printf("Article %s already present, skipping", articles[i].EANCode)
		default:
			log.Printf("Error seeding article %s: %v", articles[i].Name, err)
		}
	}
}
