package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrE12345/kundeavis-scraper/internal/config"
	"github.com/MrE12345/kundeavis-scraper/internal/ocr"
	"github.com/MrE12345/kundeavis-scraper/internal/parser"
	"github.com/MrE12345/kundeavis-scraper/internal/processor"
	"github.com/MrE12345/kundeavis-scraper/internal/scraper"
	"github.com/MrE12345/kundeavis-scraper/internal/storage"
	"github.com/MrE12345/kundeavis-scraper/internal/validator"
)

// Exit codes: 0 success, 1 run failure (including no resolvable pages),
// 2 missing required configuration.
func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		if errors.Is(err, config.ErrMissingCircularID) {
			return 2
		}
		return 1
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("Critical error connecting to database", "error", err)
		return 1
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		slog.Error("Critical error applying schema", "error", err)
		return 1
	}

	pipeline := processor.New(
		scraper.New(cfg),
		store,
		ocr.NewTesseract(cfg.OCRLanguages, cfg.MinWordConfidence),
		parser.New(cfg.Currency, cfg.HintPrefilter),
		validator.New(),
		cfg,
	)

	if err := pipeline.Run(ctx); err != nil {
		slog.Error("Pipeline run failed", "circular", cfg.CircularID, "error", err)
		return 1
	}
	return 0
}
