package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"

	"finwell-go-be/config"
	"finwell-go-be/database"
	"finwell-go-be/generation"
	"finwell-go-be/handlers"
	"finwell-go-be/rules"
	"finwell-go-be/snapshot"
)

func main() {
	cfg := config.Load()
	tunables := config.Defaults()

	// Capability probe: persistence is optional, the engine degrades to
	// session-local artifacts without it.
	db := database.Connect(cfg.DatabaseURL)

	newID := generation.IDFunc(uuid.New)
	aggregator := snapshot.NewAggregator(db, tunables.LookbackWindow())
	store := generation.NewStore(db)

	staleness, err := generation.NewStaleness(tunables)
	if err != nil {
		log.Fatal("Invalid refresh window spec: ", err)
	}

	// Fallback chain: remote model first when provisioned, deterministic
	// local algorithms always last.
	var strategies []generation.Strategy
	if cfg.GeminiAPIKey != "" {
		remote, err := generation.NewRemoteStrategy(context.Background(),
			cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RemoteTimeout, newID)
		if err != nil {
			log.Printf("Remote generation unavailable: %v", err)
		} else {
			strategies = append(strategies, remote)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, remote generation disabled")
	}
	strategies = append(strategies,
		generation.NewLocalStrategy(tunables, rules.DefaultCatalog(), nil, newID))

	svc := generation.NewService(
		generation.NewChain(strategies...),
		store,
		generation.NewSession(),
		staleness,
	)

	handlers.Setup(db, aggregator, tunables, svc, store, newID)

	// Initialize Fiber app
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Allow all for now as requested
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health Check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Data ingestion
	api.Post("/sync", handlers.BatchSync)

	// Insight engine
	api.Get("/health-score", handlers.GetHealthScore)
	api.Get("/flags", handlers.GetFlags)
	api.Post("/flags/:id/resolve", handlers.ResolveFlag)
	api.Get("/insights", handlers.GetInsights)
	api.Post("/insights/:id/dismiss", handlers.DismissInsight)
	api.Get("/smart-wins", handlers.GetSmartWins)

	// Start Server
	log.Fatal(app.Listen(":" + cfg.Port))
}
