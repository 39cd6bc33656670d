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

const googleNewsFeedURL = "https://news.google.com/rss/search?q=%s+finance&hl=en-US&gl=US&ceid=US:en"

// GoogleNewsSource queries the Google News RSS search feed for a topic.
// Google News is an aggregator; item links point at the syndicated origin.
type GoogleNewsSource struct {
	parser  *gofeed.Parser
	tracer  trace.Tracer
	limiter *RateLimiter
	feedURL string
}

func NewGoogleNewsSource(tracer trace.Tracer) *GoogleNewsSource {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient()
	parser.UserAgent = userAgent
	return &GoogleNewsSource{
		parser:  parser,
		tracer:  tracer,
		limiter: NewMinDelayLimiter(2 * time.Second),
		feedURL: googleNewsFeedURL,
	}
}

func (s *GoogleNewsSource) Name() string { return "googlenews" }

func (s *GoogleNewsSource) Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error) {
	ctx, span := s.tracer.Start(ctx, "googlenews.fetch")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(fmt.Sprintf(s.feedURL, url.QueryEscape(topic)), ctx)
	if err != nil {
		return nil, fmt.Errorf("googlenews feed for %s: %w", topic, err)
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

var _ Source = (*GoogleNewsSource)(nil)
