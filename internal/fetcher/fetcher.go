package fetcher

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/trace"

	"marketpulse/internal/domain"
	"marketpulse/internal/provider"
	"marketpulse/internal/storage"
)

type Config struct {
	Topics          []string
	MaxAgeDays      int
	ExtractContent  bool
	ExtractTopN     int
	MaxContentChars int
}

// Extractor pulls full article text for the highest-priority items.
type Extractor interface {
	Extract(ctx context.Context, url string, maxChars int) (string, error)
}

// RunResult reports one fetch invocation. Errors holds per-pair failures;
// they never abort the run.
type RunResult struct {
	PairsSucceeded int
	PairsFailed    int
	Fetched        int
	Deduplicated   int
	Extracted      int
	Persisted      int
	Errors         []string
}

// Service fans one query per (source, topic) pair out concurrently,
// normalizes and deduplicates the results, ranks them, extracts content for
// the top of each topic, and persists priority-ordered batches.
type Service struct {
	tracer    trace.Tracer
	sources   []provider.Source
	extractor Extractor
	store     storage.ArticleStore
	cfg       Config
}

func NewService(tracer trace.Tracer, sources []provider.Source, extractor Extractor, store storage.ArticleStore, cfg Config) *Service {
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 14
	}
	if cfg.ExtractTopN <= 0 {
		cfg.ExtractTopN = 5
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 8000
	}
	return &Service{
		tracer:    tracer,
		sources:   sources,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
	}
}

type pairResult struct {
	source string
	topic  string
	items  []provider.RawItem
	err    error
}

// Run executes one fetch cycle. Only configuration problems return an error;
// everything else is isolated per (source, topic) pair.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	ctx, span := s.tracer.Start(ctx, "fetcher.run")
	defer span.End()

	result := RunResult{}
	if len(s.cfg.Topics) == 0 {
		return result, fmt.Errorf("no topics configured")
	}
	if len(s.sources) == 0 {
		return result, fmt.Errorf("no sources configured")
	}
	if s.store == nil {
		return result, fmt.Errorf("article store is not initialized")
	}

	// One slot per pair so tasks never share state; slice order is
	// (source-major, topic-minor) and later stages walk it in that order,
	// which keeps first-seen dedup deterministic.
	pairs := make([]pairResult, 0, len(s.sources)*len(s.cfg.Topics))
	for _, src := range s.sources {
		for _, topic := range s.cfg.Topics {
			pairs = append(pairs, pairResult{source: src.Name(), topic: topic})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	idx := 0
	for _, src := range s.sources {
		for _, topic := range s.cfg.Topics {
			src, topic, slot := src, topic, &pairs[idx]
			idx++
			g.Go(func() error {
				items, err := src.Fetch(gctx, topic, s.cfg.MaxAgeDays)
				slot.items, slot.err = items, err
				return nil
			})
		}
	}
	// Tasks record failures in their slot; the group itself never errors.
	_ = g.Wait()

	// Normalize and dedupe by (topic, canonical URL), first seen wins.
	seen := make(map[string]struct{})
	batches := make(map[string][]*domain.Article, len(pairs))
	byTopic := make(map[string][]*domain.Article, len(s.cfg.Topics))
	for i := range pairs {
		pair := &pairs[i]
		if pair.err != nil {
			result.PairsFailed++
			msg := fmt.Sprintf("%s:%s: %v", pair.source, pair.topic, pair.err)
			result.Errors = append(result.Errors, msg)
			log.Printf("Fetch failed for %s", msg)
			continue
		}
		result.PairsSucceeded++
		result.Fetched += len(pair.items)

		key := pair.source + "|" + pair.topic
		for _, item := range pair.items {
			dedupKey := pair.topic + "|" + item.URL
			if _, dup := seen[dedupKey]; dup {
				result.Deduplicated++
				continue
			}
			seen[dedupKey] = struct{}{}

			article := &domain.Article{
				Source:      pair.source,
				Topic:       pair.topic,
				Title:       item.Title,
				URL:         item.URL,
				PublishedAt: item.PublishedAt,
				Content:     truncate(item.Summary, s.cfg.MaxContentChars),
				Priority:    PriorityScore(item.URL, item.Title),
			}
			batches[key] = append(batches[key], article)
			byTopic[pair.topic] = append(byTopic[pair.topic], article)
		}
	}

	if s.cfg.ExtractContent && s.extractor != nil {
		result.Extracted = s.extractTop(ctx, byTopic, &result)
	}

	// Persist per (source, topic) batch in priority order.
	for i := range pairs {
		pair := &pairs[i]
		if pair.err != nil {
			continue
		}
		key := pair.source + "|" + pair.topic
		refs := batches[key]
		if len(refs) == 0 {
			continue
		}
		batch := make([]domain.Article, len(refs))
		for j, ref := range refs {
			batch[j] = *ref
		}
		RankArticles(batch)
		paths, err := s.store.SaveBatch(pair.source, pair.topic, batch)
		result.Persisted += len(paths)
		if err != nil {
			msg := fmt.Sprintf("persist %s:%s: %v", pair.source, pair.topic, err)
			result.Errors = append(result.Errors, msg)
			log.Printf("%s", msg)
		}
	}

	return result, nil
}

// extractTop fetches full content for the N highest-priority articles of each
// topic. Failures fall back to the feed snippet already in place.
func (s *Service) extractTop(ctx context.Context, byTopic map[string][]*domain.Article, result *RunResult) int {
	extracted := 0
	for _, topic := range s.cfg.Topics {
		refs := byTopic[topic]
		if len(refs) == 0 {
			continue
		}
		ranked := make([]*domain.Article, len(refs))
		copy(ranked, refs)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Priority != ranked[j].Priority {
				return ranked[i].Priority > ranked[j].Priority
			}
			return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
		})

		limit := s.cfg.ExtractTopN
		if limit > len(ranked) {
			limit = len(ranked)
		}
		for _, article := range ranked[:limit] {
			content, err := s.extractor.Extract(ctx, article.URL, s.cfg.MaxContentChars)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("extract %s: %v", article.URL, err))
				continue
			}
			article.Content = content
			extracted++
		}
	}
	return extracted
}

// truncate caps v at max bytes, backing off to a rune boundary so persisted
// content stays valid UTF-8.
func truncate(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return strings.TrimSpace(v[:cut])
}
