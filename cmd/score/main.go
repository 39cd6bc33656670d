package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"marketpulse/internal/config"
	"marketpulse/internal/scoring"
	"marketpulse/internal/storage"
	"marketpulse/pkg/tracing"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is required for scoring")
	}

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

	orchestrator := scoring.NewOrchestrator(
		tracer,
		storage.NewArticleRepo(cfg.DataDir),
		storage.NewScoreRepo(cfg.DataDir),
		storage.NewMarketRepo(cfg.DataDir),
		scoring.NewOpenAIClient(cfg.OpenAIAPIKey),
		scoring.Config{
			Model:       cfg.OpenAIModel,
			MaxArticles: cfg.MaxArticles,
			MaxAgeDays:  cfg.MaxAgeDays,
			Delay:       cfg.ScoreDelay,
			Retries:     cfg.ScoreRetries,
		},
	)

	result, err := orchestrator.Run(ctx)
	if err != nil {
		log.Fatalf("scoring run failed: %v", err)
	}

	log.Printf("Scoring complete: %d discovered, %d filtered, %d already scored, %d scored, %d failed",
		result.Discovered, result.Filtered, result.CacheHits, result.Scored, result.Failed)
	for _, msg := range result.Errors {
		log.Printf("  error: %s", msg)
	}
}
