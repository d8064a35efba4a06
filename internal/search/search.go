package search

import (
	"sort"
	"strings"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/sahilm/fuzzy"
)

// Ranking adjustments applied on top of the fuzzy score.
const (
	urlPenalty = 20
	tagBonus   = 30
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark *model.Node
	// MatchedIndexes are byte offsets into the title; matches that fall in
	// the URL are not reported.
	MatchedIndexes []int
	Score          int
}

// bookmarkTargets implements fuzzy.Source over "title url" so a query can
// hit either field.
type bookmarkTargets []*model.Node

func (bt bookmarkTargets) String(i int) string {
	return bt[i].Title + " " + displayURL(bt[i].URL)
}

func (bt bookmarkTargets) Len() int {
	return len(bt)
}

// displayURL drops the scheme and a leading www. so they do not attract
// matches.
func displayURL(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	return strings.TrimPrefix(url, "www.")
}

// Fuzzy searches bookmarks by title and URL. Matches inside the URL rank
// below title matches, and bookmarks tagged with the query rank above both.
// Results are sorted by score (best first).
func Fuzzy(bookmarks []*model.Node, query string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	source := bookmarkTargets(bookmarks)
	matches := fuzzy.FindFrom(query, source)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		b := source[m.Index]
		titleLen := len(b.Title)

		var inTitle []int
		for _, idx := range m.MatchedIndexes {
			if idx < titleLen {
				inTitle = append(inTitle, idx)
			}
		}

		score := m.Score
		if len(inTitle) < len(m.MatchedIndexes) {
			score -= urlPenalty
		}
		if b.HasTag(query) {
			score += tagBonus
		}
		results[i] = SearchResult{
			Bookmark:       b,
			MatchedIndexes: inTitle,
			Score:          score,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
