package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmai/internal/model"
)

// DefaultExportPath returns the default export file path for the given
// extension ("html" or "json").
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.%s", time.Now().Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the tree to Netscape bookmark HTML format. The root
// folder itself is not written, only its children.
func ExportHTML(tree *model.Tree) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<!-- This is an automatically generated file.\n")
	b.WriteString("     It will be read and overwritten.\n")
	b.WriteString("     DO NOT EDIT! -->\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, tree.Root().Children, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes folders and bookmarks in tree order.
func writeItems(b *strings.Builder, nodes []*model.Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, n := range nodes {
		if n.IsFolder() {
			fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n", prefix, n.DateAdded/1000, html.EscapeString(n.Title))
			fmt.Fprintf(b, "%s<DL><p>\n", prefix)
			writeItems(b, n.Children, indent+1)
			fmt.Fprintf(b, "%s</DL><p>\n", prefix)
			continue
		}

		var tags string
		if len(n.Tags) > 0 {
			tags = fmt.Sprintf(" TAGS=\"%s\"", html.EscapeString(strings.Join(n.Tags, ",")))
		}
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"%s>%s</A>\n",
			prefix,
			html.EscapeString(n.URL),
			n.DateAdded/1000,
			tags,
			html.EscapeString(n.Title),
		)
	}
}
