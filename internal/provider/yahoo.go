package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/timeutil"
)

const yahooFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// YahooFinanceSource reads the per-ticker Yahoo Finance headline feed.
type YahooFinanceSource struct {
	parser  *gofeed.Parser
	tracer  trace.Tracer
	limiter *RateLimiter
	feedURL string
}

func NewYahooFinanceSource(tracer trace.Tracer) *YahooFinanceSource {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient()
	parser.UserAgent = userAgent
	return &YahooFinanceSource{
		parser:  parser,
		tracer:  tracer,
		limiter: NewMinDelayLimiter(2 * time.Second),
		feedURL: yahooFeedURL,
	}
}

func (s *YahooFinanceSource) Name() string { return "yahoofinance" }

// Fetch returns recent headline items for topic. Items without a resolvable
// publication date are skipped; the feed is expected to carry one.
func (s *YahooFinanceSource) Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error) {
	ctx, span := s.tracer.Start(ctx, "yahoofinance.fetch")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(fmt.Sprintf(s.feedURL, url.QueryEscape(topic)), ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoofinance feed for %s: %w", topic, err)
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, row := range feed.Items {
		published, ok := feedItemTime(row)
		if !ok {
			continue
		}
		if !timeutil.IsRecent(published, maxAgeDays) {
			continue
		}
		title := sanitizeText(row.Title, 300)
		link := sanitizeText(row.Link, 500)
		if title == "" || link == "" {
			continue
		}
		items = append(items, RawItem{
			Title:       title,
			URL:         link,
			PublishedAt: published,
			Summary:     sanitizeText(row.Description, 500),
		})
	}
	return items, nil
}

func feedItemTime(row *gofeed.Item) (time.Time, bool) {
	if row.PublishedParsed != nil {
		return row.PublishedParsed.UTC(), true
	}
	t, err := timeutil.EnsureTime(row.Published)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var _ Source = (*YahooFinanceSource)(nil)
