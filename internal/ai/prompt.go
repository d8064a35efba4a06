package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/orsinium-labs/stopwords"
)

const (
	analyzeSystemPrompt = "You are a helpful bookmark assistant that outputs JSON."
	searchSystemPrompt  = "You are a semantic search engine. Output JSON."
)

func buildAnalyzePrompt(title, url, language string) string {
	return fmt.Sprintf(`Analyze the following webpage bookmark.
Title: %q
URL: %q

Target Language for output: %s

Please provide:
1. A short summary (max 50 words).
2. A list of 3-5 relevant tags (lowercase, single words mostly).
3. A suggested general category folder name (e.g., Technology, Entertainment, Work, Reading).

Return ONLY valid JSON in this format:
{
  "summary": "string",
  "tags": ["string", "string"],
  "category": "string"
}`, title, url, language)
}

func buildSearchPrompt(query string, bookmarks []*model.Node) (string, error) {
	list := make([]candidate, 0, len(bookmarks))
	for _, b := range bookmarks {
		tags := b.Tags
		if tags == nil {
			tags = []string{}
		}
		list = append(list, candidate{ID: b.ID, Title: b.Title, Summary: b.Summary, Tags: tags})
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`I have a list of bookmarks. The user is searching for: %q.
Find the bookmarks that are semantically relevant to this query.

Bookmarks List (JSON):
%s

Return a JSON object with a single key "ids" containing an array of the matching bookmark IDs.
Example: { "ids": ["123", "456"] }
Return empty array if no relevance.`, query, data), nil
}

// extractJSON strips markdown code fences and surrounding prose from a model
// reply, returning the outermost {...} object.
func extractJSON(text string) string {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first >= 0 && last > first {
		return clean[first : last+1]
	}
	return clean
}

var english = stopwords.MustGet("en")

// normalizeTags trims the suggested tags and drops blanks, duplicates and
// filler words such as "the" or "and".
func normalizeTags(tags []string) []string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || english.Contains(strings.ToLower(tag)) {
			continue
		}
		kept = append(kept, tag)
	}
	return model.MergeTags(kept)
}
