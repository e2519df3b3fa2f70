package rewriter

import (
	"encoding/json"
	"fmt"
	"strings"
)

type response struct {
	Headline string `json:"headline"`
	Excerpt  string `json:"excerpt"`
	Body     string `json:"body"`
}

func parseResponse(raw string) (*Article, error) {
	cleaned := cleanJSONResponse(raw)

	var resp response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		// Models sometimes wrap the object in prose.
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("failed to parse model response: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse model response: %w", err)
		}
	}

	resp.Headline = strings.TrimSpace(resp.Headline)
	resp.Body = strings.TrimSpace(resp.Body)

	if resp.Headline == "" || resp.Body == "" {
		return nil, fmt.Errorf("model response missing headline or body")
	}

	return &Article{
		Headline: resp.Headline,
		Excerpt:  strings.TrimSpace(resp.Excerpt),
		Body:     resp.Body,
	}, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
