package site

import "strings"

const (
	summaryLimit     = 200
	descriptionLimit = 160
)

// truncateRunes shortens text to at most limit runes, marking the cut with "...".
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "..."
}

func summarize(plain string) string {
	return truncateRunes(strings.Join(strings.Fields(plain), " "), summaryLimit)
}

func metaDescription(summary, fallback string) string {
	text := strings.TrimSpace(summary)
	if text == "" {
		text = strings.TrimSpace(fallback)
	}
	if text == "" {
		return ""
	}
	return truncateRunes(strings.Join(strings.Fields(text), " "), descriptionLimit)
}
