package search

import (
	"sort"

	"github.com/nikbrunner/bmai/internal/model"
)

// DefaultRecentLimit is the number of entries shown by the recent view.
const DefaultRecentLimit = 50

// ByTags returns the bookmarks carrying all of tags. No tags matches all.
func ByTags(bookmarks []*model.Node, tags []string) []*model.Node {
	if len(tags) == 0 {
		return bookmarks
	}
	var out []*model.Node
	for _, b := range bookmarks {
		ok := true
		for _, tag := range tags {
			if !b.HasTag(tag) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, b)
		}
	}
	return out
}

// Recent returns up to n bookmarks, newest first. Entries added at the same
// moment keep their tree order.
func Recent(bookmarks []*model.Node, n int) []*model.Node {
	sorted := make([]*model.Node, len(bookmarks))
	copy(sorted, bookmarks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateAdded > sorted[j].DateAdded
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ByIDs keeps the bookmarks whose id is in ids, in the order of bookmarks.
// Unknown ids are ignored.
func ByIDs(bookmarks []*model.Node, ids []string) []*model.Node {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*model.Node
	for _, b := range bookmarks {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
