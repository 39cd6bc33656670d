package marketdata

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/domain"
	"marketpulse/internal/storage"
)

const cacheTTL = 24 * time.Hour

// Quotes is the market data dependency of the builder.
type Quotes interface {
	History(ctx context.Context, symbol string, lookbackDays int) ([]domain.DailyPrice, error)
	Profile(ctx context.Context, symbol string) (CompanyProfile, error)
}

type Config struct {
	Symbols      []string
	LookbackDays int
	UseCache     bool
}

// RunResult reports one refresh cycle across all configured symbols.
type RunResult struct {
	Refreshed int
	CacheHits int
	Skipped   int
	Errors    []string
}

// Builder refreshes the per-symbol market context records that scoring folds
// into its prompts. One record per symbol; a fresh cached record short-circuits
// the network fetch entirely.
type Builder struct {
	tracer trace.Tracer
	quotes Quotes
	store  storage.MarketStore
	cfg    Config
}

func NewBuilder(tracer trace.Tracer, quotes Quotes, store storage.MarketStore, cfg Config) *Builder {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	return &Builder{tracer: tracer, quotes: quotes, store: store, cfg: cfg}
}

// Run refreshes every configured symbol. A symbol with no obtainable history
// is skipped and recorded; it never aborts the rest of the batch.
func (b *Builder) Run(ctx context.Context) (RunResult, error) {
	ctx, span := b.tracer.Start(ctx, "marketdata.run")
	defer span.End()

	result := RunResult{}
	if len(b.cfg.Symbols) == 0 {
		return result, fmt.Errorf("no symbols configured")
	}

	for _, symbol := range b.cfg.Symbols {
		if b.cfg.UseCache {
			if cached, ok := b.store.Fresh(symbol, cacheTTL); ok {
				log.Printf("Using cached market data for %s (fetched %s)", symbol, cached.FetchedAt.Format(time.RFC3339))
				result.CacheHits++
				continue
			}
		}

		md, err := b.Build(ctx, symbol)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", symbol, err))
			log.Printf("Skipping market data for %s: %v", symbol, err)
			continue
		}
		if _, err := b.store.Save(md); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("save %s: %v", symbol, err))
			continue
		}
		result.Refreshed++
	}
	return result, nil
}

// Build fetches history and profile for one symbol and derives the aggregate
// fields from the daily bars.
func (b *Builder) Build(ctx context.Context, symbol string) (*domain.MarketData, error) {
	ctx, span := b.tracer.Start(ctx, "marketdata.build")
	defer span.End()

	prices, err := b.quotes.History(ctx, symbol, b.cfg.LookbackDays)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	profile, err := b.quotes.Profile(ctx, symbol)
	if err != nil {
		// Aggregates still have value without the descriptive fields.
		log.Printf("Profile lookup failed for %s: %v", symbol, err)
	}

	first := prices[0]
	latest := prices[len(prices)-1]
	high := first.High
	low := first.Low
	var volumeSum int64
	for _, p := range prices {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
		volumeSum += p.Volume
	}

	change := latest.Close - first.Close
	changePct := 0.0
	if first.Close != 0 {
		changePct = change / first.Close * 100
	}

	return &domain.MarketData{
		Symbol:         symbol,
		CompanyName:    profile.Name,
		Sector:         profile.Sector,
		MarketCap:      profile.MarketCap,
		PeriodDays:     b.cfg.LookbackDays,
		StartDate:      first.Date,
		EndDate:        latest.Date,
		LatestPrice:    latest.Close,
		FirstPrice:     first.Close,
		PriceChange:    round2(change),
		PriceChangePct: round2(changePct),
		PeriodHigh:     high,
		PeriodLow:      low,
		AvgVolume:      volumeSum / int64(len(prices)),
		DataPoints:     len(prices),
		DailyPrices:    prices,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
