package fetcher

import (
	"net/url"
	"sort"
	"strings"

	"marketpulse/internal/domain"
)

// Domain tiers reflect perceived editorial quality: top-tier financial press
// first, aggregators last. The bonus is additive on top of headline keywords.
var domainTiers = []struct {
	suffix string
	bonus  float64
}{
	{"reuters.com", 1.0},
	{"bloomberg.com", 1.0},
	{"wsj.com", 1.0},
	{"ft.com", 1.0},
	{"cnbc.com", 0.8},
	{"marketwatch.com", 0.8},
	{"barrons.com", 0.8},
	{"finance.yahoo.com", 0.6},
	{"investors.com", 0.5},
	{"seekingalpha.com", 0.4},
	{"fool.com", 0.3},
	{"benzinga.com", 0.3},
	{"news.google.com", 0.2},
}

// Headline keywords and their weights; matching is lowercase substring, all
// matches summed.
var keywordWeights = map[string]float64{
	"beat":            0.6,
	"raises guidance": 0.7,
	"record":          0.5,
	"upgrade":         0.6,
	"outperform":      0.5,
	"surge":           0.4,
	"rally":           0.4,
	"all-time high":   0.7,
	"growth":          0.3,
	"profit":          0.3,
	"dividend":        0.3,

	"miss":           -0.6,
	"cuts guidance":  -0.7,
	"downgrade":      -0.6,
	"underperform":   -0.5,
	"lawsuit":        -0.7,
	"investigation":  -0.5,
	"fraud":          -0.8,
	"bankruptcy":     -1.0,
	"insolvency":     -1.0,
	"default":        -0.6,
	"plunge":         -0.5,
	"slump":          -0.5,
	"layoff":         -0.5,
	"recall":         -0.4,
	"warning":        -0.4,
}

// PriorityScore ranks an item by source quality and headline keywords. The
// base is 0; the result is unbounded but typically lands in -2..+2.
func PriorityScore(articleURL, title string) float64 {
	score := domainBonus(articleURL)
	lower := strings.ToLower(title)
	for keyword, weight := range keywordWeights {
		if strings.Contains(lower, keyword) {
			score += weight
		}
	}
	return score
}

func domainBonus(articleURL string) float64 {
	u, err := url.Parse(articleURL)
	if err != nil || u.Host == "" {
		return 0
	}
	host := strings.ToLower(u.Host)
	for _, tier := range domainTiers {
		if host == tier.suffix || strings.HasSuffix(host, "."+tier.suffix) {
			return tier.bonus
		}
	}
	return 0
}

// RankArticles orders articles by priority descending, breaking ties by
// publication recency (newer first).
func RankArticles(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Priority != articles[j].Priority {
			return articles[i].Priority > articles[j].Priority
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
