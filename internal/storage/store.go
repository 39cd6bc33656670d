package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketpulse/internal/domain"
)

const (
	scoresDirName = "llm_scores"
	marketDirName = "market_data"
)

// ArticleStore persists fetched article batches and enumerates them for
// scoring. Batches are append-only: new files continue the sequence after
// whatever earlier runs left behind.
type ArticleStore interface {
	SaveBatch(source, topic string, articles []domain.Article) ([]string, error)
	Walk(fn func(path string, article domain.Article) error) error
}

// ScoreStore is the orchestrator's idempotent-write interface. Exists is the
// sole cache signal: an article with a score record is never scored again.
type ScoreStore interface {
	Exists(topic, articlePath string) bool
	Save(topic, articlePath string, rec domain.ScoreRecord) (string, error)
}

// MarketStore persists per-symbol market context records.
type MarketStore interface {
	Load(symbol string) (*domain.MarketData, error)
	Save(md *domain.MarketData) (string, error)
	Fresh(symbol string, ttl time.Duration) (*domain.MarketData, bool)
}

// ArticleRepo stores articles as JSON files under {root}/{source}/{topic}.
// Single-writer-per-directory discipline is assumed.
type ArticleRepo struct {
	root string
}

func NewArticleRepo(root string) *ArticleRepo {
	return &ArticleRepo{root: root}
}

// SaveBatch writes one file per article, numbered in slice order after any
// existing files in the same directory. Returns the written paths.
func (r *ArticleRepo) SaveBatch(source, topic string, articles []domain.Article) ([]string, error) {
	if len(articles) == 0 {
		return nil, nil
	}
	dir := filepath.Join(r.root, source, topic)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create article dir: %w", err)
	}

	next := nextSequence(dir)
	paths := make([]string, 0, len(articles))
	for i, article := range articles {
		name := fmt.Sprintf("%03d_%s.json", next+i, article.PublishedAt.UTC().Format("2006-01-02"))
		path := filepath.Join(dir, name)
		if err := writeJSON(path, article); err != nil {
			return paths, fmt.Errorf("save article %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Walk visits every persisted article in lexical path order, skipping the
// score and market-data trees. Files that fail to decode are excluded.
func (r *ArticleRepo) Walk(fn func(path string, article domain.Article) error) error {
	return filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == scoresDirName || d.Name() == marketDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		var article domain.Article
		if err := readJSON(path, &article); err != nil {
			log.Printf("Warning: could not read article %s: %v", path, err)
			return nil
		}
		return fn(path, article)
	})
}

// ScoreRepo stores score records under {root}/llm_scores/{topic}, one per
// article, named after the article file stem.
type ScoreRepo struct {
	root string
}

func NewScoreRepo(root string) *ScoreRepo {
	return &ScoreRepo{root: root}
}

// Exists probes for a score record belonging to articlePath.
func (r *ScoreRepo) Exists(topic, articlePath string) bool {
	_, err := os.Stat(r.path(topic, articlePath))
	return err == nil
}

// Save writes the score record derived from articlePath and returns its path.
func (r *ScoreRepo) Save(topic, articlePath string, rec domain.ScoreRecord) (string, error) {
	path := r.path(topic, articlePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create score dir: %w", err)
	}
	if err := writeJSON(path, rec); err != nil {
		return "", fmt.Errorf("save score record: %w", err)
	}
	return path, nil
}

func (r *ScoreRepo) path(topic, articlePath string) string {
	stem := strings.TrimSuffix(filepath.Base(articlePath), ".json")
	return filepath.Join(r.root, scoresDirName, topic, stem+"_score.json")
}

// MarketRepo stores one market data record per symbol under
// {root}/market_data.
type MarketRepo struct {
	root string
}

func NewMarketRepo(root string) *MarketRepo {
	return &MarketRepo{root: root}
}

func (r *MarketRepo) Load(symbol string) (*domain.MarketData, error) {
	var md domain.MarketData
	if err := readJSON(r.path(symbol), &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Save persists md, stamping FetchedAt if the builder left it zero.
func (r *MarketRepo) Save(md *domain.MarketData) (string, error) {
	if md.FetchedAt.IsZero() {
		md.FetchedAt = time.Now().UTC()
	}
	path := r.path(md.Symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create market dir: %w", err)
	}
	if err := writeJSON(path, md); err != nil {
		return "", fmt.Errorf("save market data: %w", err)
	}
	return path, nil
}

// Fresh returns the cached record for symbol when it is younger than ttl.
func (r *MarketRepo) Fresh(symbol string, ttl time.Duration) (*domain.MarketData, bool) {
	md, err := r.Load(symbol)
	if err != nil {
		return nil, false
	}
	if md.FetchedAt.IsZero() || time.Since(md.FetchedAt) >= ttl {
		return nil, false
	}
	return md, true
}

func (r *MarketRepo) path(symbol string) string {
	return filepath.Join(r.root, marketDirName, symbol+"_market_data.json")
}

func nextSequence(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	max := 0
	for _, e := range entries {
		name := e.Name()
		if len(name) < 4 || name[3] != '_' {
			continue
		}
		n := 0
		if _, err := fmt.Sscanf(name[:3], "%03d", &n); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// writeJSON goes through a temp file so a failed write never leaves a partial
// record behind; the next run simply sees a cache miss.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

var _ ArticleStore = (*ArticleRepo)(nil)
var _ ScoreStore = (*ScoreRepo)(nil)
var _ MarketStore = (*MarketRepo)(nil)
