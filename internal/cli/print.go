package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nikbrunner/bmai/internal/model"
)

// printTree writes the folder hierarchy below root, two spaces per level.
func printTree(w io.Writer, root *model.Node) {
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		for _, c := range n.Children {
			indent := strings.Repeat("  ", depth)
			if c.IsFolder() {
				fmt.Fprintf(w, "%s%s/  [%s]\n", indent, c.Title, c.ID)
				walk(c, depth+1)
				continue
			}
			fmt.Fprintf(w, "%s%s  <%s>  [%s]%s\n", indent, c.Title, c.URL, c.ID, formatTags(c.Tags))
		}
	}
	walk(root, 0)
}

// printBookmarks writes one line per bookmark, with the summary below when
// verbose is set.
func printBookmarks(w io.Writer, bookmarks []*model.Node, verbose bool) {
	for _, b := range bookmarks {
		fmt.Fprintf(w, "%s  %s  <%s>%s\n", b.ID, b.Title, b.URL, formatTags(b.Tags))
		if verbose && b.Summary != "" {
			fmt.Fprintf(w, "    %s\n", b.Summary)
		}
	}
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "  #" + strings.Join(tags, " #")
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// formatMillis renders an epoch-millisecond timestamp in local time.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// withURL keeps the bookmarks that have a URL.
func withURL(nodes []*model.Node) []*model.Node {
	var out []*model.Node
	for _, n := range nodes {
		if n.URL != "" {
			out = append(out, n)
		}
	}
	return out
}
