package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RootID is the id of the single root folder.
const RootID = "root"

// NodeType distinguishes folders from bookmarks.
type NodeType string

const (
	TypeFolder   NodeType = "folder"
	TypeBookmark NodeType = "bookmark"
)

// ErrUnknownType is returned when decoding a node whose type is neither
// folder nor bookmark.
var ErrUnknownType = errors.New("unknown node type")

// Node is a folder or a bookmark in the tree.
//
// Nodes reachable from a published Tree are shared between tree versions and
// must be treated as read-only.
type Node struct {
	ID           string
	ParentID     string
	Title        string
	URL          string
	Type         NodeType
	Children     []*Node // non-nil for folders only
	DateAdded    int64   // epoch milliseconds
	Tags         []string
	Summary      string
	AIClassified bool
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool {
	return n.Type == TypeFolder
}

// IsBookmark reports whether n is a bookmark.
func (n *Node) IsBookmark() bool {
	return n.Type == TypeBookmark
}

// HasTag reports whether n carries tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// shallowClone copies n with fresh Children and Tags slices. Child nodes
// themselves stay shared.
func (n *Node) shallowClone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	if n.Tags != nil {
		c.Tags = make([]string, len(n.Tags))
		copy(c.Tags, n.Tags)
	}
	return &c
}

// DeepCopy returns an independent copy of the subtree rooted at n.
func (n *Node) DeepCopy() *Node {
	c := n.shallowClone()
	for i, child := range c.Children {
		c.Children[i] = child.DeepCopy()
	}
	return c
}

// normalize enforces the folder/children invariant on a decoded subtree.
func (n *Node) normalize() {
	if n.Type == "" {
		if n.Children != nil || (n.URL == "" && n.ID == RootID) {
			n.Type = TypeFolder
		} else {
			n.Type = TypeBookmark
		}
	}
	if n.IsFolder() {
		if n.Children == nil {
			n.Children = []*Node{}
		}
		n.URL = ""
	} else {
		n.Children = nil
	}
	for _, c := range n.Children {
		c.normalize()
	}
}

// nodeJSON is the persisted shape, compatible with the extension's storage.
type nodeJSON struct {
	ID           string   `json:"id"`
	ParentID     string   `json:"parentId,omitempty"`
	Title        string   `json:"title"`
	URL          string   `json:"url,omitempty"`
	Type         NodeType `json:"type"`
	Children     *[]*Node `json:"children,omitempty"`
	DateAdded    int64    `json:"dateAdded"`
	Tags         []string `json:"tags,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	AIClassified bool     `json:"aiClassified,omitempty"`
}

// MarshalJSON writes folders with a (possibly empty) children array and
// bookmarks without one.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:           n.ID,
		ParentID:     n.ParentID,
		Title:        n.Title,
		URL:          n.URL,
		Type:         n.Type,
		DateAdded:    n.DateAdded,
		Tags:         n.Tags,
		Summary:      n.Summary,
		AIClassified: n.AIClassified,
	}
	if n.IsFolder() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node and its subtree, normalizing children.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case "", TypeFolder, TypeBookmark:
	default:
		return fmt.Errorf("%w %q (node %q)", ErrUnknownType, in.Type, in.ID)
	}
	*n = Node{
		ID:           in.ID,
		ParentID:     in.ParentID,
		Title:        in.Title,
		URL:          in.URL,
		Type:         in.Type,
		DateAdded:    in.DateAdded,
		Tags:         in.Tags,
		Summary:      in.Summary,
		AIClassified: in.AIClassified,
	}
	if in.Children != nil {
		n.Children = *in.Children
		if n.Children == nil {
			n.Children = []*Node{}
		}
	}
	n.normalize()
	return nil
}

// MergeTags returns the union of the given tag lists in first-seen order,
// without duplicates and without blank entries.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// normalizeTitle folds a folder title for merge comparisons.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
