package scoring

import (
	"fmt"
	"strings"

	"marketpulse/internal/domain"
)

const promptTemplate = `You are a financial sentiment analyst. Read the article below and rate its
sentiment toward the topic security on a scale from -10.00 (extremely bearish)
to +10.00 (extremely bullish). 0.00 is neutral.

Respond with exactly two lines:
SCORE: <number between -10.00 and +10.00>
EXPLANATION: <one or two sentences justifying the score>

Article:
Title: %s
Published: %s
Source: %s
Topic: %s

Content:
%s`

// BuildPrompt renders the scoring prompt for one article. A non-empty market
// context block is prepended so the model sees price action before the text.
func BuildPrompt(article domain.Article, marketContext string) string {
	published := "N/A"
	if !article.PublishedAt.IsZero() {
		published = article.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	prompt := fmt.Sprintf(promptTemplate,
		orNA(article.Title),
		published,
		orNA(article.Source),
		orNA(article.Topic),
		orNA(article.Content),
	)
	if marketContext != "" {
		return marketContext + "\n\n" + prompt
	}
	return prompt
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}
