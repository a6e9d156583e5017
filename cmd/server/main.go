package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/QuanTND2497/expense-tracker/internal/adapter/ai"
	"github.com/QuanTND2497/expense-tracker/internal/adapter/auth"
	"github.com/QuanTND2497/expense-tracker/internal/adapter/store"
	"github.com/QuanTND2497/expense-tracker/internal/handler"
	"github.com/QuanTND2497/expense-tracker/internal/middleware"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/service"
	"github.com/QuanTND2497/expense-tracker/internal/token"
	"github.com/QuanTND2497/expense-tracker/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting Expense Tracker",
		"port", cfg.Port,
		"chat_model", cfg.OpenAIChatModel,
		"vision_model", cfg.OpenAIVisionModel,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if cfg.SeedDefaults {
		if err := pgStore.SeedDefaultCategories(context.Background()); err != nil {
			slog.Error("failed to seed default categories", "error", err)
			os.Exit(1)
		}
	}

	// ── Token issuer ─────────────────────────────────────────────────────
	issuer, err := token.NewIssuer(
		cfg.JWTSecret, cfg.AccessTokenTTL(),
		cfg.JWTRefreshSecret, cfg.RefreshTokenTTL(),
	)
	if err != nil {
		slog.Error("failed to build token issuer", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	googleAuth := auth.NewGoogleProvider(
		cfg.GoogleClientID, cfg.GoogleClientSecret,
		cfg.OAuthCallbackBaseURL+"/api/auth/google/callback",
	)
	facebookAuth := auth.NewFacebookProvider(
		cfg.FacebookClientID, cfg.FacebookClientSecret,
		cfg.OAuthCallbackBaseURL+"/api/auth/facebook/callback",
	)

	providers := port.AuthProviderRegistry{
		"google":   googleAuth,
		"facebook": facebookAuth,
	}

	openAI := ai.NewOpenAIProvider(ai.OpenAIConfig{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		ChatModel:   cfg.OpenAIChatModel,
		VisionModel: cfg.OpenAIVisionModel,
	})

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(pgStore, providers, issuer)
	transactionService := service.NewTransactionService(pgStore)
	aiService := service.NewAIService(openAI, pgStore)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	tokenAuth := middleware.TokenAuth(issuer, pgStore)

	// ── Public Routes ────────────────────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService, cfg.FrontendURL, cfg.RefreshTokenTTL(), secureCookies())
	authHandler.Register(app, tokenAuth)

	userHandler := handler.NewUserHandler(authService)
	userHandler.Register(app)

	// Health check
	app.Get("/api/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	api := app.Group("/api", tokenAuth)

	categoryHandler := handler.NewCategoryHandler(pgStore)
	categoryHandler.Register(api)

	transactionHandler := handler.NewTransactionHandler(pgStore, pgStore, transactionService)
	transactionHandler.Register(api)

	aiHandler := handler.NewAIHandler(aiService)
	aiHandler.Register(api)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func secureCookies() bool {
	return os.Getenv("APP_ENV") == "production"
}
