package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir string

	Topics  []string
	Sources []string

	MaxAgeDays      int
	ExtractContent  bool
	ExtractTopN     int
	MaxContentChars int

	OpenAIAPIKey string
	OpenAIModel  string
	MaxArticles  int
	ScoreDelay   time.Duration
	ScoreRetries int

	Symbols            []string
	MarketLookbackDays int
	MarketUseCache     bool
}

// sourcesFile is the optional YAML file named by SOURCES_FILE. Lists present
// in the file override the corresponding env lists.
type sourcesFile struct {
	Sources []string `yaml:"sources"`
	Topics  []string `yaml:"topics"`
	Symbols []string `yaml:"symbols"`
}

func Load() *Config {
	cfg := &Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("DATA_DIR"))
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.Topics = splitList(os.Getenv("TOPICS"))
	if len(cfg.Topics) == 0 {
		log.Println("Warning: TOPICS not set")
	}

	cfg.Sources = splitList(os.Getenv("SOURCES"))
	if len(cfg.Sources) == 0 {
		cfg.Sources = []string{"yahoofinance", "googlenews"}
	}

	cfg.Symbols = splitList(os.Getenv("SYMBOLS"))

	if path := strings.TrimSpace(os.Getenv("SOURCES_FILE")); path != "" {
		applySourcesFile(cfg, path)
	}

	cfg.MaxAgeDays = intEnv("MAX_AGE_DAYS", 14)
	cfg.ExtractContent = boolEnv("EXTRACT_CONTENT", true)
	cfg.ExtractTopN = intEnv("EXTRACT_TOP_N", 5)
	cfg.MaxContentChars = intEnv("MAX_CONTENT_CHARS", 8000)

	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, scoring will be disabled")
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	cfg.MaxArticles = intEnv("MAX_ARTICLES", 10)
	cfg.ScoreDelay = time.Duration(intEnv("SCORE_DELAY_MS", 1000)) * time.Millisecond
	cfg.ScoreRetries = 0
	if v := strings.TrimSpace(os.Getenv("SCORE_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ScoreRetries = n
		}
	}

	if len(cfg.Symbols) == 0 {
		// Topics double as ticker symbols when no explicit list is given.
		cfg.Symbols = cfg.Topics
	}
	cfg.MarketLookbackDays = intEnv("MARKET_LOOKBACK_DAYS", 30)
	cfg.MarketUseCache = boolEnv("MARKET_USE_CACHE", true)

	return cfg
}

func applySourcesFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: could not read sources file %s: %v", path, err)
		return
	}
	var parsed sourcesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		log.Printf("Warning: could not parse sources file %s: %v", path, err)
		return
	}
	if len(parsed.Sources) > 0 {
		cfg.Sources = normalizeList(parsed.Sources)
	}
	if len(parsed.Topics) > 0 {
		cfg.Topics = normalizeList(parsed.Topics)
	}
	if len(parsed.Symbols) > 0 {
		cfg.Symbols = normalizeList(parsed.Symbols)
	}
}

func splitList(v string) []string {
	return normalizeList(strings.Split(v, ","))
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intEnv(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}
