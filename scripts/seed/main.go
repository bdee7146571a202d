package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/config"
	"github.com/blaisecz/smart-wake/internal/logger"
	"github.com/blaisecz/smart-wake/internal/seed"
)

func main() {
	days := flag.Int("days", seed.DefaultDays, "nights of wake history to create")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, "console", "smart-wake-seed")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	db, err := config.NewDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := seed.Run(db, *days, zl); err != nil {
		zl.Fatal("failed to seed database", zap.Error(err))
	}

	fmt.Printf("\nSeeded %d nights. Try:\n  curl localhost:%s/v1/sessions\n  curl localhost:%s/v1/report?days=14\n", *days, cfg.Port, cfg.Port)
}
