package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pagebrief/internal/config"
	"pagebrief/internal/fetcher"
	"pagebrief/internal/inference"
	"pagebrief/internal/runner"
	"pagebrief/internal/summarizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg := config.LoadConfig()

	client, err := inference.New(inference.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create inference client",
			"error", err,
			"baseURL", cfg.BaseURL,
			"model", cfg.Model)

		return 1
	}
	log.InfoContext(ctx, "Inference client is initialized",
		"baseURL", cfg.BaseURL,
		"model", cfg.Model)

	f := fetcher.New(cfg.FetchTimeout, cfg.FetchMaxBytes, log)
	s := summarizer.NewPageSummarizer(f, client, log)
	r := runner.New(client, s, cfg.BaseURL, cfg.Model, os.Stdout, log)

	return r.Run(ctx, os.Args[1:])
}
