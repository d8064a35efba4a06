package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bmai/internal/model"
	"golang.org/x/net/html"
)

// ParseHTML parses a Netscape bookmark file into a fresh tree. <H3> entries
// become folders and <A> entries bookmarks; ADD_DATE (seconds) and the
// non-standard TAGS attribute are carried over.
func ParseHTML(r io.Reader) (*model.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	root := &model.Node{
		ID:        model.RootID,
		Title:     "Root",
		Type:      model.TypeFolder,
		DateAdded: time.Now().UnixMilli(),
		Children:  []*model.Node{},
	}

	// Folder stack; the top receives new entries.
	stack := []*model.Node{root}
	var pending *model.Node // folder whose <DL> has not been seen yet
	seenList := false

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				if !seenList {
					return
				}
				parent := stack[len(stack)-1]
				title := textContent(n)
				if title == "" {
					title = "Untitled Folder"
				}
				folder := &model.Node{
					ID:        model.NewID(),
					ParentID:  parent.ID,
					Title:     title,
					Type:      model.TypeFolder,
					DateAdded: addDate(n),
					Children:  []*model.Node{},
				}
				parent.Children = append(parent.Children, folder)
				pending = folder
				return

			case "a":
				if !seenList {
					return
				}
				href := attr(n, "href")
				if href == "" {
					return
				}
				parent := stack[len(stack)-1]
				title := textContent(n)
				if title == "" {
					title = "Untitled"
				}
				var tags []string
				if raw := attr(n, "tags"); raw != "" {
					tags = model.MergeTags(strings.Split(raw, ","))
				}
				parent.Children = append(parent.Children, &model.Node{
					ID:        model.NewID(),
					ParentID:  parent.ID,
					Title:     title,
					URL:       href,
					Type:      model.TypeBookmark,
					DateAdded: addDate(n),
					Tags:      tags,
				})
				return

			case "dl":
				// The first list is the root; later lists belong to the
				// folder announced by the preceding <H3>.
				pushed := false
				if !seenList {
					seenList = true
				} else if pending != nil {
					stack = append(stack, pending)
					pushed = true
				}
				pending = nil

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return model.NewTree(root), nil
}

// addDate converts the ADD_DATE attribute (epoch seconds) to milliseconds,
// falling back to now when it is missing, malformed, zero or out of range.
func addDate(n *html.Node) int64 {
	if raw := attr(n, "add_date"); raw != "" {
		if ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && ts > 0 && ts <= math.MaxInt64/1000 {
			return ts * 1000
		}
	}
	return time.Now().UnixMilli()
}

// textContent returns the trimmed text content of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
