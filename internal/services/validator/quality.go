package validator

import (
	"regexp"
	"strings"
)

var datePatternRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// isLowQualityText detects list-style pages (board indexes, archives)
// before any LLM spend. Mostly-short lines and date-stamped rows are the
// signature of a listing rather than an article. Texts under five lines
// are too small to judge and pass through.
func isLowQualityText(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 5 {
		return false
	}

	shortLineScore := 0.0
	for _, line := range lines {
		if len([]rune(strings.TrimSpace(line))) < 50 {
			shortLineScore += 1.0
		}
		if datePatternRe.MatchString(line) {
			shortLineScore += 0.5
		}
	}

	return shortLineScore/float64(len(lines)) > 0.7
}
