package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/runclub/runlog-api/internal/challenge"
	"github.com/runclub/runlog-api/internal/config"
	"github.com/runclub/runlog-api/internal/database"
	"github.com/runclub/runlog-api/internal/handlers"
	"github.com/runclub/runlog-api/internal/ledger"
	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/rank"
	"github.com/runclub/runlog-api/internal/routes"
	"github.com/runclub/runlog-api/internal/stats"
	"github.com/runclub/runlog-api/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("database connect failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("migration failed", "error", err)
	}

	h := handlers.New(
		cfg,
		zl,
		ledger.New(db, zl, cfg.MaxDistanceKm),
		stats.New(db),
		challenge.New(db, zl),
		rank.New(db),
		users.New(db, zl),
	)

	app := fiber.New(fiber.Config{AppName: "runlog-api"})
	routes.Setup(app, cfg, h)

	zl.Info("server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("server stopped", "error", err)
	}
}
