package fetcher

import (
	"testing"
	"time"

	"marketpulse/internal/domain"
)

func TestPriorityScoreDomainAndKeywords(t *testing.T) {
	topTier := PriorityScore("https://www.reuters.com/markets/acme", "Company Beats Earnings Estimates, Raises Guidance")
	neutral := PriorityScore("https://news.google.com/articles/xyz", "Company Schedules Annual Shareholder Meeting")

	if topTier <= neutral {
		t.Fatalf("expected top-tier positive headline to outrank aggregator: %v <= %v", topTier, neutral)
	}
	// reuters 1.0 + beat 0.6 + raises guidance 0.7
	if want := 2.3; !closeTo(topTier, want) {
		t.Errorf("top-tier score = %v, want %v", topTier, want)
	}
	if want := 0.2; !closeTo(neutral, want) {
		t.Errorf("aggregator score = %v, want %v", neutral, want)
	}
}

func TestPriorityScoreNegativeKeywords(t *testing.T) {
	score := PriorityScore("https://www.cnbc.com/2026/acme.html", "Acme Faces Fraud Investigation After Lawsuit")
	// cnbc 0.8 + fraud -0.8 + investigation -0.5 + lawsuit -0.7
	if want := -1.2; !closeTo(score, want) {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestPriorityScoreUnknownDomain(t *testing.T) {
	if got := PriorityScore("https://example.org/post", "Quiet quarter"); got != 0 {
		t.Errorf("score = %v, want 0", got)
	}
	if got := PriorityScore("::not-a-url::", "Quiet quarter"); got != 0 {
		t.Errorf("score for bad URL = %v, want 0", got)
	}
}

func TestDomainBonusMatchesSubdomains(t *testing.T) {
	if got := domainBonus("https://finance.yahoo.com/news/a"); !closeTo(got, 0.6) {
		t.Errorf("finance.yahoo.com bonus = %v, want 0.6", got)
	}
	// Suffix matching must not treat lookalike hosts as tiered.
	if got := domainBonus("https://fakereuters.com/a"); got != 0 {
		t.Errorf("fakereuters.com bonus = %v, want 0", got)
	}
}

func TestRankArticlesRecencyTiebreak(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	articles := []domain.Article{
		{Title: "older high", Priority: 1.0, PublishedAt: base},
		{Title: "low", Priority: 0.2, PublishedAt: base.Add(48 * time.Hour)},
		{Title: "newer high", Priority: 1.0, PublishedAt: base.Add(time.Hour)},
	}
	RankArticles(articles)

	want := []string{"newer high", "older high", "low"}
	for i, title := range want {
		if articles[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, articles[i].Title, title)
		}
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
