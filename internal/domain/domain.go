package domain

import "time"

// Article is one normalized news item for a (source, topic) pair. Identity is
// (source, topic, sequence within the persisted batch); articles are written
// once by the fetcher and never mutated.
type Article struct {
	Source      string    `json:"source"`
	Topic       string    `json:"topic"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content,omitempty"`
	Priority    float64   `json:"priority"`
}

// HasRequiredFields reports whether the article carries everything the
// scoring pipeline needs. Articles failing this are filtered, never scored.
func (a Article) HasRequiredFields() bool {
	return a.Title != "" && a.Content != "" && a.Topic != ""
}

type DailyPrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MarketData is the per-symbol market context record. Aggregates are derived
// from DailyPrices and recomputed on every refresh; FetchedAt drives the
// cache freshness window.
type MarketData struct {
	Symbol         string       `json:"symbol"`
	CompanyName    string       `json:"company_name"`
	Sector         string       `json:"sector"`
	MarketCap      float64      `json:"market_cap,omitempty"`
	PeriodDays     int          `json:"period_days"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	LatestPrice    float64      `json:"latest_price"`
	FirstPrice     float64      `json:"first_price"`
	PriceChange    float64      `json:"price_change"`
	PriceChangePct float64      `json:"price_change_percent"`
	PeriodHigh     float64      `json:"period_high"`
	PeriodLow      float64      `json:"period_low"`
	AvgVolume      int64        `json:"avg_volume"`
	DataPoints     int          `json:"data_points"`
	DailyPrices    []DailyPrice `json:"daily_prices"`
	FetchedAt      time.Time    `json:"fetched_at"`
}

// ScoreRecord is the persisted outcome of scoring one article. Exactly one
// record exists per scored article; its presence is the orchestrator's sole
// cache signal.
type ScoreRecord struct {
	ArticleFile    string    `json:"article_file"`
	Topic          string    `json:"topic"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	LLMScore       float64   `json:"llm_score"`
	LLMExplanation string    `json:"llm_explanation"`
	Model          string    `json:"model"`
	ScoredAt       time.Time `json:"scored_at"`
}

const (
	ScoreMin = -10.0
	ScoreMax = 10.0
)

// ValidScore reports whether v is inside the closed scoring interval.
func ValidScore(v float64) bool {
	return v >= ScoreMin && v <= ScoreMax
}
