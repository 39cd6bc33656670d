package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
)

const cnbcSearchURL = "https://www.cnbc.com/search/?query=%s&qsearchterm=%s"

// CNBCSource scrapes the CNBC search results page for a topic. The page does
// not expose publication dates, so every surviving item is stamped with the
// fetch time.
type CNBCSource struct {
	client    *http.Client
	tracer    trace.Tracer
	limiter   *RateLimiter
	searchURL string
}

func NewCNBCSource(tracer trace.Tracer) *CNBCSource {
	return &CNBCSource{
		client:    newHTTPClient(),
		tracer:    tracer,
		limiter:   NewMinDelayLimiter(2 * time.Second),
		searchURL: cnbcSearchURL,
	}
}

func (s *CNBCSource) Name() string { return "cnbc" }

func (s *CNBCSource) Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error) {
	ctx, span := s.tracer.Start(ctx, "cnbc.fetch")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	escaped := url.QueryEscape(topic)
	body, err := doGet(ctx, s.client, fmt.Sprintf(s.searchURL, escaped, escaped))
	if err != nil {
		return nil, fmt.Errorf("cnbc search for %s: %w", topic, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse cnbc page: %w", err)
	}

	now := time.Now().UTC()
	var items []RawItem
	doc.Find("div.SearchResultCard").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := sanitizeText(link.Text(), 300)
		if title == "" {
			return
		}
		items = append(items, RawItem{
			Title:       title,
			URL:         absoluteURL("https://www.cnbc.com", href),
			PublishedAt: now,
		})
	})
	return items, nil
}

var _ Source = (*CNBCSource)(nil)
