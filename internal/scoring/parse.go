package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"marketpulse/internal/domain"
)

const defaultExplanation = "No explanation provided"

// ParseResponse extracts the score and explanation from a model reply. The
// reply must carry a SCORE line with a number inside the scoring interval;
// the explanation may continue over several lines and defaults when absent.
func ParseResponse(text string) (float64, string, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var (
		score    float64
		haveScor bool
		explLine = -1
	)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "SCORE:"); ok && !haveScor {
			raw := strings.ReplaceAll(strings.TrimSpace(after), "+", "")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return 0, "", fmt.Errorf("unparsable score %q", raw)
			}
			if !domain.ValidScore(v) {
				return 0, "", fmt.Errorf("score %.2f out of range [%.2f, %.2f]", v, domain.ScoreMin, domain.ScoreMax)
			}
			score = math.Round(v*100) / 100
			haveScor = true
		} else if strings.HasPrefix(line, "EXPLANATION:") && explLine < 0 {
			explLine = i
		}
	}
	if !haveScor {
		return 0, "", fmt.Errorf("no SCORE line in response")
	}

	explanation := defaultExplanation
	if explLine >= 0 {
		parts := []string{strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[explLine]), "EXPLANATION:"))}
		for _, line := range lines[explLine+1:] {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "SCORE:") {
				continue
			}
			parts = append(parts, line)
		}
		if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
			explanation = joined
		}
	}
	return score, explanation, nil
}
