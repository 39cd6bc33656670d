package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func noopTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestYahooFinanceFetch(t *testing.T) {
	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC1123Z)
	old := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC1123Z)
	rss := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>TSLA Headlines</title>
<item><title>Tesla Beats Earnings Estimates</title><link>https://finance.yahoo.com/news/tsla-beat</link><description>Quarterly numbers</description><pubDate>%s</pubDate></item>
<item><title>Stale Story</title><link>https://finance.yahoo.com/news/stale</link><pubDate>%s</pubDate></item>
<item><title>No Date Story</title><link>https://finance.yahoo.com/news/nodate</link></item>
</channel></rss>`, recent, old)

	src := NewYahooFinanceSource(noopTracer())
	src.parser.Client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("s") != "TSLA" {
			t.Fatalf("unexpected query: %s", req.URL.String())
		}
		return fakeResponse(rss), nil
	})}

	items, err := src.Fetch(context.Background(), "TSLA", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after age and date filtering, got %d", len(items))
	}
	if items[0].Title != "Tesla Beats Earnings Estimates" {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if items[0].PublishedAt.Location() != time.UTC {
		t.Errorf("published time must be UTC, got %v", items[0].PublishedAt.Location())
	}
}

func TestGoogleNewsFetch(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour).Format(time.RFC1123Z)
	rss := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>Search</title>
<item><title>MSFT rallies on cloud growth</title><link>https://example.org/msft</link><pubDate>%s</pubDate></item>
</channel></rss>`, recent)

	src := NewGoogleNewsSource(noopTracer())
	src.parser.Client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse(rss), nil
	})}

	items, err := src.Fetch(context.Background(), "MSFT", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://example.org/msft" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestMarketWatchFetchStampsMissingDates(t *testing.T) {
	html := `<html><body>
<div class="article__content"><a href="/story/tsla-surges">TSLA surges after record deliveries</a><p>Snippet text</p></div>
<div class="article__content"><a href="https://www.marketwatch.com/story/other">Other story</a>
<time datetime="2020-01-01T00:00:00Z"></time></div>
</body></html>`

	src := NewMarketWatchSource(noopTracer())
	src.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse(html), nil
	})}

	items, err := src.Fetch(context.Background(), "TSLA", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("dated-out item should be dropped, got %+v", items)
	}
	item := items[0]
	if item.URL != "https://www.marketwatch.com/story/tsla-surges" {
		t.Errorf("relative href not resolved: %s", item.URL)
	}
	if item.PublishedAt.IsZero() {
		t.Error("missing datetime should be stamped with fetch time")
	}
	if item.Summary != "Snippet text" {
		t.Errorf("unexpected summary: %q", item.Summary)
	}
}

func TestCNBCFetch(t *testing.T) {
	html := `<html><body>
<div class="SearchResultCard"><a href="/2026/08/29/nvda.html">Nvidia guidance disappoints</a></div>
</body></html>`

	src := NewCNBCSource(noopTracer())
	src.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse(html), nil
	})}

	items, err := src.Fetch(context.Background(), "NVDA", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://www.cnbc.com/2026/08/29/nvda.html" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFetchSurfacesHTTPErrors(t *testing.T) {
	src := NewReutersSource(noopTracer())
	src.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(bytes.NewBufferString("upstream down")),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := src.Fetch(context.Background(), "AAPL", 14); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestExtractorPullsParagraphs(t *testing.T) {
	html := `<html><body><nav>menu</nav>
<p>First paragraph.</p><p></p><p>Second paragraph.</p></body></html>`

	ex := NewContentExtractor(noopTracer())
	ex.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse(html), nil
	})}

	content, err := ex.Extract(context.Background(), "https://news.example/a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "First paragraph.\nSecond paragraph." {
		t.Errorf("unexpected content: %q", content)
	}

	capped, err := ex.Extract(context.Background(), "https://news.example/a", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capped != "First" {
		t.Errorf("content cap not applied: %q", capped)
	}
}

func TestSanitizeTextKeepsRuneBoundary(t *testing.T) {
	// "é" occupies bytes 3-4; a 4-byte cap lands mid-rune and must back off.
	got := sanitizeText("café latte", 4)
	if got != "caf" {
		t.Errorf("sanitizeText = %q, want %q", got, "caf")
	}
	if !utf8.ValidString(got) {
		t.Errorf("capped text is not valid UTF-8: %q", got)
	}

	if got := sanitizeText("  spaced   out  ", 0); got != "spaced out" {
		t.Errorf("whitespace collapse = %q", got)
	}
}

func TestExtractorCapKeepsRuneBoundary(t *testing.T) {
	ex := NewContentExtractor(noopTracer())
	ex.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse("<html><body><p>naïve text</p></body></html>"), nil
	})}

	content, err := ex.Extract(context.Background(), "https://news.example/a", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "na" {
		t.Errorf("capped content = %q, want %q", content, "na")
	}
}

func TestExtractorEmptyPageIsError(t *testing.T) {
	ex := NewContentExtractor(noopTracer())
	ex.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return fakeResponse("<html><body><div>no paragraphs</div></body></html>"), nil
	})}

	if _, err := ex.Extract(context.Background(), "https://news.example/a", 0); err == nil {
		t.Fatal("expected error for paragraph-free page")
	}
}
