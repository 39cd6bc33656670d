package scoring

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/domain"
	"marketpulse/internal/marketdata"
	"marketpulse/internal/provider"
	"marketpulse/internal/storage"
	"marketpulse/internal/timeutil"
)

type Config struct {
	Model       string
	MaxArticles int
	MaxAgeDays  int
	Delay       time.Duration
	Retries     int
}

// RunResult reports one scoring pass.
type RunResult struct {
	Discovered int
	Filtered   int
	CacheHits  int
	Scored     int
	Failed     int
	Errors     []string
}

type candidate struct {
	path    string
	article domain.Article
}

// Orchestrator walks persisted articles and scores the unscored ones through
// the LLM, one at a time, spacing calls with the limiter. A score record on
// disk is the only cache signal: its presence means the article is done.
type Orchestrator struct {
	tracer   trace.Tracer
	articles storage.ArticleStore
	scores   storage.ScoreStore
	market   storage.MarketStore
	llm      LLMClient
	limiter  *provider.RateLimiter
	now      func() time.Time
	cfg      Config
}

func NewOrchestrator(
	tracer trace.Tracer,
	articles storage.ArticleStore,
	scores storage.ScoreStore,
	market storage.MarketStore,
	llm LLMClient,
	cfg Config,
) *Orchestrator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 10
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 1
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Orchestrator{
		tracer:   tracer,
		articles: articles,
		scores:   scores,
		market:   market,
		llm:      llm,
		limiter:  provider.NewMinDelayLimiter(cfg.Delay),
		now:      func() time.Time { return time.Now().UTC() },
		cfg:      cfg,
	}
}

// Run scores up to MaxArticles unscored recent articles. Per-article failures
// are recorded and never abort the pass.
func (o *Orchestrator) Run(ctx context.Context) (RunResult, error) {
	ctx, span := o.tracer.Start(ctx, "scoring.run")
	defer span.End()

	result := RunResult{}
	if o.llm == nil {
		return result, fmt.Errorf("LLM client is not configured")
	}

	candidates, err := o.discover(&result)
	if err != nil {
		return result, err
	}

	// The batch bound applies in discovery order before the cache check, so
	// one invocation never issues more than MaxArticles scoring calls even
	// when every call fails.
	if len(candidates) > o.cfg.MaxArticles {
		candidates = candidates[:o.cfg.MaxArticles]
	}

	contexts := make(map[string]string)
	for _, c := range candidates {
		if o.scores.Exists(c.article.Topic, c.path) {
			result.CacheHits++
			continue
		}

		if err := o.scoreOne(ctx, c, contexts); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", c.path, err))
			log.Printf("Scoring failed for %s: %v", c.path, err)
			continue
		}
		result.Scored++
	}

	span.SetAttributes(
		attribute.Int("scoring.scored", result.Scored),
		attribute.Int("scoring.failed", result.Failed),
	)
	return result, nil
}

// discover walks the article tree and keeps complete, recent articles in
// lexical path order.
func (o *Orchestrator) discover(result *RunResult) ([]candidate, error) {
	var candidates []candidate
	err := o.articles.Walk(func(path string, article domain.Article) error {
		result.Discovered++
		if !article.HasRequiredFields() {
			result.Filtered++
			return nil
		}
		if !timeutil.IsRecentAt(article.PublishedAt, o.cfg.MaxAgeDays, o.now()) {
			result.Filtered++
			return nil
		}
		candidates = append(candidates, candidate{path: path, article: article})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk articles: %w", err)
	}
	return candidates, nil
}

func (o *Orchestrator) scoreOne(ctx context.Context, c candidate, contexts map[string]string) error {
	ctx, span := o.tracer.Start(ctx, "scoring.score-article")
	defer span.End()
	span.SetAttributes(
		attribute.String("article.topic", c.article.Topic),
		attribute.String("article.source", c.article.Source),
	)

	prompt := BuildPrompt(c.article, o.marketContext(c.article.Topic, contexts))

	var (
		reply string
		err   error
	)
	for attempt := 0; attempt <= o.cfg.Retries; attempt++ {
		if waitErr := o.limiter.Wait(ctx); waitErr != nil {
			return waitErr
		}
		reply, err = completePrompt(ctx, o.llm, o.cfg.Model, prompt)
		if err == nil {
			break
		}
		log.Printf("LLM call failed for %s (attempt %d/%d): %v", c.path, attempt+1, o.cfg.Retries+1, err)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("llm call: %w", err)
	}

	score, explanation, err := ParseResponse(reply)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	record := domain.ScoreRecord{
		ArticleFile:    c.path,
		Topic:          c.article.Topic,
		Source:         c.article.Source,
		Title:          c.article.Title,
		URL:            c.article.URL,
		PublishedAt:    c.article.PublishedAt,
		LLMScore:       score,
		LLMExplanation: explanation,
		Model:          o.cfg.Model,
		ScoredAt:       o.now(),
	}
	path, err := o.scores.Save(c.article.Topic, c.path, record)
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	log.Printf("Saved score %+.2f -> %s", score, path)
	return nil
}

// marketContext formats the cached market record for a topic, once per run.
// Topics without market data score on article text alone.
func (o *Orchestrator) marketContext(topic string, contexts map[string]string) string {
	if cached, ok := contexts[topic]; ok {
		return cached
	}
	formatted := ""
	if o.market != nil {
		md, err := o.market.Load(topic)
		if err == nil {
			formatted = marketdata.FormatContext(md)
		}
	}
	contexts[topic] = formatted
	return formatted
}
