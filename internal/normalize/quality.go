package normalize

import "strings"

// infoKeywords signal substantive prose on the target sites
var infoKeywords = []string{
	"설명", "내용", "정보", "소개", "개요", "현황", "실적", "계획", "전략",
}

// QualityScore estimates extraction quality on a 0..1 scale from length,
// sentence structure, informational keywords, and line uniqueness. The
// score feeds the knowledge base so poorly scoring path patterns get
// avoided on later sessions.
func QualityScore(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0.0
	}

	score := 0.0

	switch textLen := len([]rune(trimmed)); {
	case textLen > 1000:
		score += 0.4
	case textLen > 500:
		score += 0.3
	case textLen > 100:
		score += 0.2
	}

	sentences := 0
	for _, s := range strings.Split(text, ".") {
		if len([]rune(strings.TrimSpace(s))) > 10 {
			sentences++
		}
	}
	if sentences >= 5 {
		score += 0.3
	} else if sentences >= 2 {
		score += 0.2
	}

	keywordCount := 0
	for _, kw := range infoKeywords {
		if strings.Contains(text, kw) {
			keywordCount++
		}
	}
	if keywordCount >= 3 {
		score += 0.2
	} else if keywordCount >= 1 {
		score += 0.1
	}

	// Repeated lines dilute the score proportionally
	lines := strings.Split(text, "\n")
	unique := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		unique[line] = struct{}{}
	}
	if len(lines) > 0 {
		score *= float64(len(unique)) / float64(len(lines))
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
