package model

import (
	"encoding/json"
	"sort"
	"sync"
)

// Tree is an immutable version of the bookmark hierarchy. Mutating methods
// return a new Tree that shares every untouched subtree with its predecessor.
type Tree struct {
	root *Node

	flatOnce sync.Once
	flat     []*Node
}

// NewTree wraps root in a Tree. A nil root yields an empty tree. The root is
// forced to be a folder with id "root".
func NewTree(root *Node) *Tree {
	if root == nil {
		root = &Node{ID: RootID, Title: "Root", Type: TypeFolder, DateAdded: nowMillis()}
	}
	if root.ID != RootID || !root.IsFolder() || root.ParentID != "" {
		root = root.shallowClone()
		root.ID = RootID
		root.ParentID = ""
		root.Type = TypeFolder
		root.URL = ""
	}
	if root.Children == nil {
		root.Children = []*Node{}
	}
	return &Tree{root: root}
}

// DefaultTree returns the tree seeded on first start.
func DefaultTree() *Tree {
	now := nowMillis()
	return NewTree(&Node{
		ID:        RootID,
		Title:     "Root",
		Type:      TypeFolder,
		DateAdded: now,
		Children: []*Node{
			{
				ID:        "1",
				ParentID:  RootID,
				Title:     "Bookmarks Bar",
				Type:      TypeFolder,
				DateAdded: now,
				Children: []*Node{
					{
						ID:        "101",
						ParentID:  "1",
						Title:     "Google",
						URL:       "https://www.google.com",
						Type:      TypeBookmark,
						DateAdded: now,
						Tags:      []string{"Search", "Tool"},
						Summary:   "The world's most popular search engine.",
					},
					{
						ID:        "102",
						ParentID:  "1",
						Title:     "GitHub",
						URL:       "https://github.com",
						Type:      TypeBookmark,
						DateAdded: now,
						Tags:      []string{"Dev", "Code", "Git"},
						Summary:   "Where the world builds software.",
					},
				},
			},
			{
				ID:        "2",
				ParentID:  RootID,
				Title:     "Other Bookmarks",
				Type:      TypeFolder,
				DateAdded: now,
				Children:  []*Node{},
			},
		},
	})
}

// Root returns the root folder.
func (t *Tree) Root() *Node {
	return t.root
}

// Find returns the node with the given id, or nil.
func (t *Tree) Find(id string) *Node {
	path, ok := findPath(t.root, id)
	if !ok {
		return nil
	}
	return nodeAt(t.root, path)
}

// Flatten returns every bookmark in pre-order. Folders are traversed but not
// listed. The result is computed once per tree version.
func (t *Tree) Flatten() []*Node {
	t.flatOnce.Do(func() {
		t.flat = []*Node{}
		t.Walk(func(n *Node, _ int) bool {
			if n.IsBookmark() {
				t.flat = append(t.flat, n)
			}
			return true
		})
	})
	out := make([]*Node, len(t.flat))
	copy(out, t.flat)
	return out
}

// AllTags returns the sorted set of tags used by bookmarks.
func (t *Tree) AllTags() []string {
	seen := make(map[string]bool)
	for _, b := range t.Flatten() {
		for _, tag := range b.Tags {
			seen[tag] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Counts returns the number of folders (root excluded) and bookmarks.
func (t *Tree) Counts() (folders, bookmarks int) {
	t.Walk(func(n *Node, depth int) bool {
		switch {
		case depth == 0:
		case n.IsFolder():
			folders++
		default:
			bookmarks++
		}
		return true
	})
	return folders, bookmarks
}

// FolderPath is a folder together with its slash-joined title path.
type FolderPath struct {
	Folder *Node
	Path   string
}

// Folders lists every folder below the root in pre-order, with paths like
// "Bookmarks Bar/Dev".
func (t *Tree) Folders() []FolderPath {
	var out []FolderPath
	var walk func(n *Node, prefix string)
	walk = func(n *Node, prefix string) {
		for _, c := range n.Children {
			if !c.IsFolder() {
				continue
			}
			path := c.Title
			if prefix != "" {
				path = prefix + "/" + c.Title
			}
			out = append(out, FolderPath{Folder: c, Path: path})
			walk(c, path)
		}
	}
	walk(t.root, "")
	return out
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
}

// MarshalJSON writes the root node.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.root)
}

// UnmarshalTree decodes a serialized root node.
func UnmarshalTree(data []byte) (*Tree, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return NewTree(&root), nil
}

// findPath returns the child indexes leading from n to the node with id,
// checking each node before its descendants.
func findPath(n *Node, id string) ([]int, bool) {
	if n.ID == id {
		return []int{}, true
	}
	for i, c := range n.Children {
		if p, ok := findPath(c, id); ok {
			return append([]int{i}, p...), true
		}
	}
	return nil, false
}

// locateChild finds id among the descendants of n. Each visited node's
// immediate children are searched before recursing into them.
func locateChild(n *Node, id string) ([]int, bool) {
	for i, c := range n.Children {
		if c.ID == id {
			return []int{i}, true
		}
	}
	for i, c := range n.Children {
		if p, ok := locateChild(c, id); ok {
			return append([]int{i}, p...), true
		}
	}
	return nil, false
}

// nodeAt follows path from root.
func nodeAt(root *Node, path []int) *Node {
	n := root
	for _, i := range path {
		n = n.Children[i]
	}
	return n
}

// copyPath clones every node from root along path and returns the new root
// and the cloned node at the end of the path.
func copyPath(root *Node, path []int) (*Node, *Node) {
	newRoot := root.shallowClone()
	cur := newRoot
	for _, i := range path {
		child := cur.Children[i].shallowClone()
		cur.Children[i] = child
		cur = child
	}
	return newRoot, cur
}

// hasPrefix reports whether path starts with prefix.
func hasPrefix(path, prefix []int) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
