package images

import (
	"regexp"
	"strings"
)

const (
	maxKeywords   = 5
	fallbackQuery = "news"
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"shall": true, "can": true, "need": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "their": true,
	"our": true, "your": true, "new": true, "announces": true, "released": true,
	"says": true, "reports": true, "today": true, "week": true,
}

// SearchQuery builds a stock photo query from up to five distinct keywords
// of the text, or "news" when nothing usable remains.
func SearchQuery(text string) string {
	words := strings.Fields(nonWordPattern.ReplaceAllString(strings.ToLower(text), " "))

	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, maxKeywords)
	for _, word := range words {
		if stopWords[word] || len([]rune(word)) <= 2 || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}

	if len(keywords) == 0 {
		return fallbackQuery
	}

	return strings.Join(keywords, " ")
}
