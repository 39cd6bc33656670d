package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"marketpulse/internal/config"
	"marketpulse/internal/marketdata"
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

	builder := marketdata.NewBuilder(
		tracer,
		marketdata.NewYahooClient(tracer),
		storage.NewMarketRepo(cfg.DataDir),
		marketdata.Config{
			Symbols:      cfg.Symbols,
			LookbackDays: cfg.MarketLookbackDays,
			UseCache:     cfg.MarketUseCache,
		},
	)

	result, err := builder.Run(ctx)
	if err != nil {
		log.Fatalf("market data run failed: %v", err)
	}

	log.Printf("Market data complete: %d refreshed, %d cache hits, %d skipped",
		result.Refreshed, result.CacheHits, result.Skipped)
	for _, msg := range result.Errors {
		log.Printf("  error: %s", msg)
	}
	if result.Refreshed == 0 && result.CacheHits == 0 {
		os.Exit(1)
	}
}
