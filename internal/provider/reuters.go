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

	"marketpulse/internal/timeutil"
)

const reutersSearchURL = "https://www.reuters.com/site-search/?query=%s&section=business"

// ReutersSource scrapes the Reuters business site-search page for a topic.
type ReutersSource struct {
	client    *http.Client
	tracer    trace.Tracer
	limiter   *RateLimiter
	searchURL string
}

func NewReutersSource(tracer trace.Tracer) *ReutersSource {
	return &ReutersSource{
		client:    newHTTPClient(),
		tracer:    tracer,
		limiter:   NewMinDelayLimiter(2 * time.Second),
		searchURL: reutersSearchURL,
	}
}

func (s *ReutersSource) Name() string { return "reuters" }

func (s *ReutersSource) Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error) {
	ctx, span := s.tracer.Start(ctx, "reuters.fetch")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, s.client, fmt.Sprintf(s.searchURL, url.QueryEscape(topic)))
	if err != nil {
		return nil, fmt.Errorf("reuters search for %s: %w", topic, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse reuters page: %w", err)
	}

	now := time.Now().UTC()
	var items []RawItem
	doc.Find("div.search-result-content").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := sanitizeText(link.Text(), 300)
		if title == "" {
			return
		}

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
			URL:         absoluteURL("https://www.reuters.com", href),
			PublishedAt: published,
		})
	})
	return items, nil
}

var _ Source = (*ReutersSource)(nil)
