package provider

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// NewSource resolves a configured source name to its implementation. An
// unknown name is a configuration error and fails the whole invocation.
func NewSource(name string, tracer trace.Tracer) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yahoofinance":
		return NewYahooFinanceSource(tracer), nil
	case "googlenews":
		return NewGoogleNewsSource(tracer), nil
	case "marketwatch":
		return NewMarketWatchSource(tracer), nil
	case "reuters":
		return NewReutersSource(tracer), nil
	case "cnbc":
		return NewCNBCSource(tracer), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", name)
	}
}

// NewSources resolves every configured name, failing fast on the first
// unknown one.
func NewSources(names []string, tracer trace.Tracer) ([]Source, error) {
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := NewSource(name, tracer)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
