package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/krishimitra/crop-scan-backend/internal/advice"
	"github.com/krishimitra/crop-scan-backend/internal/agromet"
	agrometproviders "github.com/krishimitra/crop-scan-backend/internal/agromet/providers"
	httpapi "github.com/krishimitra/crop-scan-backend/internal/api/http"
	"github.com/krishimitra/crop-scan-backend/internal/config"
	"github.com/krishimitra/crop-scan-backend/internal/diagnosis"
	diagnosisproviders "github.com/krishimitra/crop-scan-backend/internal/diagnosis/providers"
	"github.com/krishimitra/crop-scan-backend/internal/forecast"
	"github.com/krishimitra/crop-scan-backend/internal/speech"
	"github.com/krishimitra/crop-scan-backend/internal/staging"
	"github.com/krishimitra/crop-scan-backend/internal/translate"
)

func main() {
	// Load configuration; missing keys or a malformed service account are fatal.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Shared HTTP client for outbound adapter calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Earth Engine authenticates once at startup; a bad credential is fatal.
	earthEngine, err := agrometproviders.NewEarthEngine(ctx, cfg.ServiceAccountJSON, cfg.EEProject)
	if err != nil {
		log.Fatalf("failed to build earth engine adapter: %v", err)
	}
	if err := earthEngine.Authenticate(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	log.Println("Successfully authenticated with Google Earth Engine")

	gemini, err := advice.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("failed to build gemini adapter: %v", err)
	}

	stager, err := staging.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}

	identifier := diagnosisproviders.NewKindwiseIdentifier(httpClient, cfg.CropHealthAPIKey)

	svcs := httpapi.Services{
		Diagnosis: diagnosis.NewService(stager, identifier, gemini),
		Weather:   agromet.NewService(earthEngine, gemini),
		Forecast:  forecast.NewService(httpClient),
		Speech:    speech.NewGoogle(httpClient, cfg.GoogleAPIKey),
		Translate: translate.NewGoogle(httpClient, cfg.GoogleAPIKey),
		Advisor:   gemini,
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "crop-scan-backend",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             20 * 1024 * 1024, // camera images
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "crop-scan-backend",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, svcs)

	go func() {
		log.Printf("server running on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
