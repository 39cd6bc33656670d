package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/domain"
)

const (
	chartURL        = "https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d"
	quoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=assetProfile,price"

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	requestTimeout = 20 * time.Second
)

// Yahoo Finance v8 chart payload.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yfOHLCV `json:"quote"`
	} `json:"indicators"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// Yahoo Finance v10 quoteSummary payload, trimmed to the modules requested.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	Price *struct {
		LongName  string   `json:"longName"`
		ShortName string   `json:"shortName"`
		MarketCap yfFinVal `json:"marketCap"`
	} `json:"price"`
}

type yfFinVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CompanyProfile is the descriptive slice of quoteSummary the context needs.
type CompanyProfile struct {
	Name      string
	Sector    string
	MarketCap float64
}

// YahooClient fetches daily price history and company profiles from the
// public Yahoo Finance JSON endpoints.
type YahooClient struct {
	client *http.Client
	tracer trace.Tracer
}

func NewYahooClient(tracer trace.Tracer) *YahooClient {
	return &YahooClient{
		client: &http.Client{Timeout: requestTimeout},
		tracer: tracer,
	}
}

// History returns daily bars for the lookback window, oldest first. Days with
// missing quote values are skipped. An empty result is an error so callers can
// treat unknown symbols uniformly.
func (c *YahooClient) History(ctx context.Context, symbol string, lookbackDays int) ([]domain.DailyPrice, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.history")
	defer span.End()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	endpoint := fmt.Sprintf(chartURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	var payload yfChartResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("chart request for %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	prices := make([]domain.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open := at(quote.Open, i)
		high := at(quote.High, i)
		low := at(quote.Low, i)
		clos := at(quote.Close, i)
		if open == nil || high == nil || low == nil || clos == nil {
			continue
		}
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		prices = append(prices, domain.DailyPrice{
			Date:   time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:   round2(*open),
			High:   round2(*high),
			Low:    round2(*low),
			Close:  round2(*clos),
			Volume: volume,
		})
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}
	return prices, nil
}

// Profile returns company name, sector, and market cap. Missing fields fall
// back to the symbol and "Unknown" so a failed profile never blocks a refresh.
func (c *YahooClient) Profile(ctx context.Context, symbol string) (CompanyProfile, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.profile")
	defer span.End()

	profile := CompanyProfile{Name: symbol, Sector: "Unknown"}
	endpoint := fmt.Sprintf(quoteSummaryURL, url.PathEscape(symbol))

	var payload yfQuoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return profile, fmt.Errorf("quoteSummary request for %s: %w", symbol, err)
	}
	if payload.QuoteSummary.Error != nil {
		return profile, fmt.Errorf("quoteSummary API error for %s: %s", symbol, payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return profile, fmt.Errorf("empty quoteSummary for %s", symbol)
	}

	result := payload.QuoteSummary.Result[0]
	if result.AssetProfile != nil && result.AssetProfile.Sector != "" {
		profile.Sector = result.AssetProfile.Sector
	}
	if result.Price != nil {
		if result.Price.LongName != "" {
			profile.Name = result.Price.LongName
		} else if result.Price.ShortName != "" {
			profile.Name = result.Price.ShortName
		}
		profile.MarketCap = result.Price.MarketCap.Raw
	}
	return profile, nil
}

func (c *YahooClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
