package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"marketpulse/internal/config"
	"marketpulse/internal/fetcher"
	"marketpulse/internal/provider"
	"marketpulse/internal/storage"
	"marketpulse/pkg/tracing"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := tracing.InitTracer(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	sources, err := provider.NewSources(cfg.Sources, tracer)
	if err != nil {
		log.Fatalf("invalid source configuration: %v", err)
	}

	svc := fetcher.NewService(
		tracer,
		sources,
		provider.NewContentExtractor(tracer),
		storage.NewArticleRepo(cfg.DataDir),
		fetcher.Config{
			Topics:          cfg.Topics,
			MaxAgeDays:      cfg.MaxAgeDays,
			ExtractContent:  cfg.ExtractContent,
			ExtractTopN:     cfg.ExtractTopN,
			MaxContentChars: cfg.MaxContentChars,
		},
	)

	result, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("fetch run failed: %v", err)
	}

	log.Printf("Fetch complete: %d fetched, %d duplicates dropped, %d extracted, %d persisted (%d/%d pairs ok)",
		result.Fetched, result.Deduplicated, result.Extracted, result.Persisted,
		result.PairsSucceeded, result.PairsSucceeded+result.PairsFailed)
	for _, msg := range result.Errors {
		log.Printf("  error: %s", msg)
	}
	if result.Persisted == 0 && len(result.Errors) > 0 {
		os.Exit(1)
	}
}
