package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/timeutil"
)

const marketWatchSearchURL = "https://www.marketwatch.com/search?q=%s"

// MarketWatchSource scrapes the MarketWatch search results page for a topic.
type MarketWatchSource struct {
	client    *http.Client
	tracer    trace.Tracer
	limiter   *RateLimiter
	searchURL string
}

func NewMarketWatchSource(tracer trace.Tracer) *MarketWatchSource {
	return &MarketWatchSource{
		client:    newHTTPClient(),
		tracer:    tracer,
		limiter:   NewMinDelayLimiter(2 * time.Second),
		searchURL: marketWatchSearchURL,
	}
}

func (s *MarketWatchSource) Name() string { return "marketwatch" }

func (s *MarketWatchSource) Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error) {
	ctx, span := s.tracer.Start(ctx, "marketwatch.fetch")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, s.client, fmt.Sprintf(s.searchURL, url.QueryEscape(topic)))
	if err != nil {
		return nil, fmt.Errorf("marketwatch search for %s: %w", topic, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse marketwatch page: %w", err)
	}

	now := time.Now().UTC()
	var items []RawItem
	doc.Find("div.article__content").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := sanitizeText(link.Text(), 300)
		if title == "" {
			return
		}

		// Search results carry a datetime attribute on good days; when it is
		// missing the item is stamped with the fetch time rather than dropped.
		published := now
		if dt, ok := sel.Find("time[datetime]").First().Attr("datetime"); ok {
			if t, err := timeutil.EnsureTime(dt); err == nil {
				published = t
			}
		}
		if !timeutil.IsRecentAt(published, maxAgeDays, now) {
			return
		}

		items = append(items, RawItem{
			Title:       title,
			URL:         absoluteURL("https://www.marketwatch.com", href),
			PublishedAt: published,
			Summary:     sanitizeText(sel.Find("p").First().Text(), 500),
		})
	})
	return items, nil
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + href
}

var _ Source = (*MarketWatchSource)(nil)
