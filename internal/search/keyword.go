package search

import (
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/nikbrunner/bmai/internal/model"
)

// Keyword returns the bookmarks whose title, URL or summary contain every
// whitespace-separated term of query, case-insensitively. Order is kept.
// An empty query matches everything.
func Keyword(bookmarks []*model.Node, query string) ([]*model.Node, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return bookmarks, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		Build()
	if err != nil {
		return nil, err
	}

	var out []*model.Node
	for _, b := range bookmarks {
		// NUL separates fields so a term never spans two of them.
		haystack := strings.ToLower(b.Title + "\x00" + b.URL + "\x00" + b.Summary)

		found := make(map[int]bool, len(terms))
		for _, m := range automaton.FindAllOverlapping([]byte(haystack)) {
			found[m.PatternID] = true
		}
		if len(found) == len(terms) {
			out = append(out, b)
		}
	}
	return out, nil
}

// queryTerms lower-cases and splits query, dropping duplicates and terms
// contained in a longer term (a match of the longer implies the shorter).
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	var terms []string
	for i, f := range fields {
		redundant := false
		for j, other := range fields {
			if i == j {
				continue
			}
			if (f == other && j < i) || (f != other && strings.Contains(other, f)) {
				redundant = true
				break
			}
		}
		if !redundant {
			terms = append(terms, f)
		}
	}
	return terms
}
