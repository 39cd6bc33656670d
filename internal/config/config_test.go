package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_DIR", "TOPICS", "SOURCES", "SOURCES_FILE", "SYMBOLS",
		"MAX_AGE_DAYS", "EXTRACT_CONTENT", "EXTRACT_TOP_N", "MAX_CONTENT_CHARS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "MAX_ARTICLES",
		"SCORE_DELAY_MS", "SCORE_RETRIES", "MARKET_LOOKBACK_DAYS", "MARKET_USE_CACHE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if !reflect.DeepEqual(cfg.Sources, []string{"yahoofinance", "googlenews"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if cfg.MaxAgeDays != 14 || cfg.ExtractTopN != 5 || cfg.MaxContentChars != 8000 {
		t.Errorf("fetch defaults = %d / %d / %d", cfg.MaxAgeDays, cfg.ExtractTopN, cfg.MaxContentChars)
	}
	if !cfg.ExtractContent || !cfg.MarketUseCache {
		t.Error("boolean defaults should be true")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.MaxArticles != 10 || cfg.ScoreRetries != 0 {
		t.Errorf("scoring defaults = %q / %d / %d", cfg.OpenAIModel, cfg.MaxArticles, cfg.ScoreRetries)
	}
	if cfg.ScoreDelay != time.Second {
		t.Errorf("ScoreDelay = %v, want 1s", cfg.ScoreDelay)
	}
	if cfg.MarketLookbackDays != 30 {
		t.Errorf("MarketLookbackDays = %d, want 30", cfg.MarketLookbackDays)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOPICS", "AAPL, TSLA ,,MSFT")
	t.Setenv("SOURCES", "yahoofinance")
	t.Setenv("MAX_AGE_DAYS", "7")
	t.Setenv("EXTRACT_CONTENT", "false")
	t.Setenv("SCORE_DELAY_MS", "250")
	t.Setenv("SCORE_RETRIES", "2")

	cfg := Load()
	if !reflect.DeepEqual(cfg.Topics, []string{"AAPL", "TSLA", "MSFT"}) {
		t.Errorf("Topics = %v", cfg.Topics)
	}
	if !reflect.DeepEqual(cfg.Sources, []string{"yahoofinance"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if cfg.MaxAgeDays != 7 || cfg.ExtractContent {
		t.Errorf("MaxAgeDays = %d, ExtractContent = %v", cfg.MaxAgeDays, cfg.ExtractContent)
	}
	if cfg.ScoreDelay != 250*time.Millisecond || cfg.ScoreRetries != 2 {
		t.Errorf("ScoreDelay = %v, ScoreRetries = %d", cfg.ScoreDelay, cfg.ScoreRetries)
	}
	// Topics stand in for symbols when SYMBOLS is unset.
	if !reflect.DeepEqual(cfg.Symbols, cfg.Topics) {
		t.Errorf("Symbols = %v", cfg.Symbols)
	}

	t.Setenv("MAX_AGE_DAYS", "bad")
	cfg = Load()
	if cfg.MaxAgeDays != 14 {
		t.Errorf("invalid MAX_AGE_DAYS should fall back to 14, got %d", cfg.MaxAgeDays)
	}
}

func TestLoadSourcesFileOverridesLists(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sources.yaml")
	body := "sources:\n  - marketwatch\n  - reuters\ntopics:\n  - NVDA\nsymbols:\n  - NVDA\n  - SPY\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TOPICS", "AAPL")
	t.Setenv("SOURCES_FILE", path)

	cfg := Load()
	if !reflect.DeepEqual(cfg.Sources, []string{"marketwatch", "reuters"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if !reflect.DeepEqual(cfg.Topics, []string{"NVDA"}) {
		t.Errorf("Topics = %v", cfg.Topics)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"NVDA", "SPY"}) {
		t.Errorf("Symbols = %v", cfg.Symbols)
	}
}

func TestLoadMissingSourcesFileKeepsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCES", "cnbc")
	t.Setenv("SOURCES_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := Load()
	if !reflect.DeepEqual(cfg.Sources, []string{"cnbc"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
}
