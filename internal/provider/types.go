package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Pretending to be a browser; several sources reject default Go user agents.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const requestTimeout = 20 * time.Second

// RawItem is one un-normalized article reference as returned by a source.
// PublishedAt is always timezone-aware UTC by the time it leaves a provider;
// items whose date could not be resolved are dropped or stamped by the
// provider, depending on what the source promises.
type RawItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
	Summary     string
}

// Source is one news provider. Implementations own their HTTP client and
// rate limiter; Fetch issues one logical query for a topic and returns the
// raw items that survive the provider's own date handling.
type Source interface {
	Name() string
	Fetch(ctx context.Context, topic string, maxAgeDays int) ([]RawItem, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func doGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

func sanitizeText(v string, max int) string {
	v = strings.Join(strings.Fields(v), " ")
	return strings.TrimSpace(cutAtRune(v, max))
}

// cutAtRune caps v at max bytes without splitting a multi-byte rune.
func cutAtRune(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return v[:cut]
}
