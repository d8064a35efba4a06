package model

// FilterByIDs prunes root to the nodes in selected plus the ancestors needed
// to reach them. A selected node keeps its whole subtree. It returns nil when
// nothing is selected, unless root is the tree root, which is always kept.
func FilterByIDs(root *Node, selected map[string]bool) *Node {
	var keep func(n *Node) bool
	keep = func(n *Node) bool {
		if selected[n.ID] {
			return true
		}
		for _, c := range n.Children {
			if keep(c) {
				return true
			}
		}
		return false
	}

	if !keep(root) && root.ID != RootID {
		return nil
	}

	var prune func(n *Node) *Node
	prune = func(n *Node) *Node {
		if selected[n.ID] {
			return n.DeepCopy()
		}
		c := n.shallowClone()
		if n.Children != nil {
			c.Children = []*Node{}
			for _, child := range n.Children {
				if keep(child) {
					c.Children = append(c.Children, prune(child))
				}
			}
		}
		return c
	}
	return prune(root)
}

// Merge folds nodes into the root folder. A folder whose trimmed,
// case-insensitive title matches an existing sibling folder is merged into
// it recursively; everything else is appended with fresh ids. Bookmarks are
// never deduplicated.
func (t *Tree) Merge(nodes []*Node) *Tree {
	if len(nodes) == 0 {
		return t
	}
	root := t.root.shallowClone()
	mergeInto(root, nodes)
	return &Tree{root: root}
}

// mergeInto merges sources into target, which must already be a private copy.
func mergeInto(target *Node, sources []*Node) {
	if target.Children == nil {
		target.Children = []*Node{}
	}
	for _, src := range sources {
		if src.IsFolder() {
			if i := findFolderByTitle(target, src.Title); i >= 0 {
				existing := target.Children[i].shallowClone()
				target.Children[i] = existing
				mergeInto(existing, src.Children)
				continue
			}
		}
		target.Children = append(target.Children, regenerateIDs(src, target.ID))
	}
}

func findFolderByTitle(parent *Node, title string) int {
	want := normalizeTitle(title)
	for i, c := range parent.Children {
		if c.IsFolder() && normalizeTitle(c.Title) == want {
			return i
		}
	}
	return -1
}

// regenerateIDs deep-copies n, giving every node in the copy a new id and
// pointing parent ids at the new owners.
func regenerateIDs(n *Node, parentID string) *Node {
	c := n.shallowClone()
	c.ID = NewID()
	c.ParentID = parentID
	for i, child := range c.Children {
		c.Children[i] = regenerateIDs(child, c.ID)
	}
	return c
}
