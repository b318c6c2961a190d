package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"monito/internal/config"
	"monito/internal/listener"
	"monito/internal/logging"
	"monito/internal/normalize"
	"monito/internal/pipeline"
	"monito/internal/pricing"
	"monito/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New(cfg.LogLevel)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	norm := normalize.New(cfg.Normalize(),
		normalize.WithParser(pricing.NewParser(cfg.Pricing())),
		normalize.WithLogger(log),
	)
	processor := pipeline.NewProcessingService(db, cfg, norm, log)
	svc := listener.NewService(db, cfg, processor, listener.WithLogger(log))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("mail listener started", "provider", cfg.MailListenerProvider, "interval_sec", cfg.MailListenerIntervalSec)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
