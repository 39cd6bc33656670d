package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
)

// ContentExtractor fetches an article page and pulls its paragraph text.
type ContentExtractor struct {
	client *http.Client
	tracer trace.Tracer
}

func NewContentExtractor(tracer trace.Tracer) *ContentExtractor {
	return &ContentExtractor{client: newHTTPClient(), tracer: tracer}
}

// Extract returns the concatenated <p> text of the page at url, truncated to
// maxChars when maxChars > 0. An empty result is an error so callers can fall
// back to the feed snippet.
func (e *ContentExtractor) Extract(ctx context.Context, url string, maxChars int) (string, error) {
	ctx, span := e.tracer.Start(ctx, "extractor.extract")
	defer span.End()

	body, err := doGet(ctx, e.client, url)
	if err != nil {
		return "", fmt.Errorf("fetch article page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no paragraph content at %s", url)
	}

	return cutAtRune(strings.Join(paragraphs, "\n"), maxChars), nil
}
