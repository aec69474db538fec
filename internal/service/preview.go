package service

import (
	"encoding/json"
	"strings"
)

const (
	previewMaxLines = 2
	previewMaxRunes = 200
)

// Lines mentioning any of these give the score away before payment.
var scoreMarkers = []string{"分數", "總評", "評分", "score", "/10"}

// buildPreview extracts a short, score-free teaser from an analysis result.
func buildPreview(result string) string {
	text := result
	if json.Valid([]byte(result)) {
		text = reviewText(result)
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || mentionsScore(line) {
			continue
		}
		kept = append(kept, line)
		if len(kept) == previewMaxLines {
			break
		}
	}

	preview := strings.Join(kept, "\n")
	if runes := []rune(preview); len(runes) > previewMaxRunes {
		preview = string(runes[:previewMaxRunes]) + "..."
	}
	return preview
}

// reviewText returns the review of the first verdict in a JSON result,
// under either key the analysis workflow has used.
func reviewText(result string) string {
	var verdicts []map[string]any
	if err := json.Unmarshal([]byte(result), &verdicts); err != nil || len(verdicts) == 0 {
		return ""
	}

	for _, key := range []string{"overallReview", "Overall Review"} {
		if s, ok := verdicts[0][key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func mentionsScore(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range scoreMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
