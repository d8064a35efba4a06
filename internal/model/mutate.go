package model

// DefaultTitle is used when a node is added without a title.
const DefaultTitle = "New Bookmark"

// NewNodeParams holds the caller-supplied fields for Add.
type NewNodeParams struct {
	Title        string
	URL          string
	Type         NodeType // defaults to TypeBookmark
	Tags         []string
	Summary      string
	AIClassified bool
}

// NodePatch lists the fields Update may change. Nil fields are left alone;
// a non-nil Tags slice (even empty) replaces the tags.
type NodePatch struct {
	Title        *string
	URL          *string
	Tags         []string
	Summary      *string
	AIClassified *bool
}

// Add appends a new node to the folder parentID. When parentID does not name
// a folder the node lands in the root folder instead.
func (t *Tree) Add(params NewNodeParams, parentID string) (*Tree, *Node, []Diagnostic) {
	var diags []Diagnostic

	path, ok := findPath(t.root, parentID)
	if ok && !nodeAt(t.root, path).IsFolder() {
		diags = append(diags, Diagnostic{Op: "add", ID: parentID, Err: ErrNotFolder})
		ok = false
	} else if !ok {
		diags = append(diags, Diagnostic{Op: "add", ID: parentID, Err: ErrNotFound})
	}
	if !ok {
		path = []int{}
	}

	newRoot, parent := copyPath(t.root, path)
	node := newNode(params, parent.ID)
	parent.Children = append(parent.Children, node)

	return &Tree{root: newRoot}, node, diags
}

func newNode(params NewNodeParams, parentID string) *Node {
	typ := params.Type
	if typ != TypeFolder {
		typ = TypeBookmark
	}
	title := params.Title
	if title == "" {
		title = DefaultTitle
	}
	n := &Node{
		ID:           NewID(),
		ParentID:     parentID,
		Title:        title,
		Type:         typ,
		DateAdded:    nowMillis(),
		Tags:         MergeTags(params.Tags),
		Summary:      params.Summary,
		AIClassified: params.AIClassified,
	}
	if typ == TypeFolder {
		n.Children = []*Node{}
	} else {
		n.URL = params.URL
	}
	return n
}

// Update applies patch to the node with the given id. URL patches on folders
// are ignored.
func (t *Tree) Update(id string, patch NodePatch) (*Tree, []Diagnostic) {
	path, ok := findPath(t.root, id)
	if !ok {
		return t, []Diagnostic{{Op: "update", ID: id, Err: ErrNotFound}}
	}

	newRoot, n := copyPath(t.root, path)
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.URL != nil && n.IsBookmark() {
		n.URL = *patch.URL
	}
	if patch.Tags != nil {
		n.Tags = MergeTags(patch.Tags)
	}
	if patch.Summary != nil {
		n.Summary = *patch.Summary
	}
	if patch.AIClassified != nil {
		n.AIClassified = *patch.AIClassified
	}
	return &Tree{root: newRoot}, nil
}

// Delete removes each listed node together with its subtree.
func (t *Tree) Delete(ids []string) (*Tree, []Diagnostic) {
	var diags []Diagnostic
	root := t.root
	changed := false

	for _, id := range ids {
		if id == RootID {
			diags = append(diags, Diagnostic{Op: "delete", ID: id, Err: ErrRoot})
			continue
		}
		path, ok := locateChild(root, id)
		if !ok {
			diags = append(diags, Diagnostic{Op: "delete", ID: id, Err: ErrNotFound})
			continue
		}
		root = detach(root, path)
		changed = true
	}

	if !changed {
		return t, diags
	}
	return &Tree{root: root}, diags
}

// Move relocates the listed nodes to the end of the target folder, in the
// order given. A node is never moved into itself or into its own subtree.
// If the target is not a folder nothing moves.
func (t *Tree) Move(ids []string, targetID string) (*Tree, []Diagnostic) {
	targetPath, ok := findPath(t.root, targetID)
	if !ok {
		return t, []Diagnostic{{Op: "move", ID: targetID, Err: ErrNotFound}}
	}
	if !nodeAt(t.root, targetPath).IsFolder() {
		return t, []Diagnostic{{Op: "move", ID: targetID, Err: ErrNotFolder}}
	}

	var diags []Diagnostic
	var moved []*Node
	root := t.root

	for _, id := range ids {
		switch id {
		case targetID:
			diags = append(diags, Diagnostic{Op: "move", ID: id, Err: ErrSelfMove})
			continue
		case RootID:
			diags = append(diags, Diagnostic{Op: "move", ID: id, Err: ErrRoot})
			continue
		}
		path, ok := locateChild(root, id)
		if !ok {
			diags = append(diags, Diagnostic{Op: "move", ID: id, Err: ErrNotFound})
			continue
		}
		targetPath, _ = findPath(root, targetID)
		if hasPrefix(targetPath, path) {
			diags = append(diags, Diagnostic{Op: "move", ID: id, Err: ErrCycle})
			continue
		}

		n := nodeAt(root, path).shallowClone()
		n.ParentID = targetID
		moved = append(moved, n)
		root = detach(root, path)
	}

	if len(moved) == 0 {
		return t, diags
	}

	targetPath, _ = findPath(root, targetID)
	newRoot, target := copyPath(root, targetPath)
	target.Children = append(target.Children, moved...)
	return &Tree{root: newRoot}, diags
}

// detach returns a copy of root without the node at path.
func detach(root *Node, path []int) *Node {
	newRoot, parent := copyPath(root, path[:len(path)-1])
	i := path[len(path)-1]
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
	return newRoot
}

// BatchAddTags adds tags to every bookmark whose id is listed, wherever it
// sits in the tree. Existing tags are kept and duplicates collapse.
func (t *Tree) BatchAddTags(ids []string, tags []string) (*Tree, []Diagnostic) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	matched := make(map[string]bool, len(ids))

	newRoot, changed := rewrite(t.root, func(n *Node) *Node {
		if !want[n.ID] || !n.IsBookmark() {
			return nil
		}
		matched[n.ID] = true
		c := n.shallowClone()
		c.Tags = MergeTags(n.Tags, tags)
		return c
	})

	var diags []Diagnostic
	for _, id := range ids {
		if !matched[id] {
			diags = append(diags, Diagnostic{Op: "tag", ID: id, Err: ErrNotFound})
		}
	}
	if !changed {
		return t, diags
	}
	return &Tree{root: newRoot}, diags
}

// rewrite rebuilds the tree bottom-up. fn returns a replacement for a node or
// nil to keep it. Only ancestors of replaced nodes are copied.
func rewrite(n *Node, fn func(*Node) *Node) (*Node, bool) {
	cur := n
	changed := false
	if r := fn(n); r != nil {
		cur = r
		changed = true
	}

	var children []*Node
	for i, c := range cur.Children {
		nc, ok := rewrite(c, fn)
		if !ok {
			continue
		}
		if children == nil {
			children = make([]*Node, len(cur.Children))
			copy(children, cur.Children)
		}
		children[i] = nc
	}
	if children != nil {
		if !changed {
			cur = cur.shallowClone()
			changed = true
		}
		cur.Children = children
	}
	return cur, changed
}
