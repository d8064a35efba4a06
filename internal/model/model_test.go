package model_test

import (
	"encoding/json"
	"testing"

	"github.com/nikbrunner/bmai/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// scenarioTree builds root → FolderA(1) → BookmarkX(101).
func scenarioTree() *model.Tree {
	return model.NewTree(&model.Node{
		ID:    model.RootID,
		Title: "Root",
		Type:  model.TypeFolder,
		Children: []*model.Node{
			{
				ID:       "1",
				ParentID: model.RootID,
				Title:    "FolderA",
				Type:     model.TypeFolder,
				Children: []*model.Node{
					{ID: "101", ParentID: "1", Title: "BookmarkX", URL: "https://x.example", Type: model.TypeBookmark, Tags: []string{}},
				},
			},
		},
	})
}

// sampleTree builds a slightly wider tree for structural tests.
//
//	root
//	├── dev (f1)
//	│   ├── go (f2)
//	│   │   └── Go Docs (b2)
//	│   └── GitHub (b1)
//	├── News (b3)
//	└── empty (f3)
func sampleTree() *model.Tree {
	return model.NewTree(&model.Node{
		ID:   model.RootID,
		Type: model.TypeFolder,
		Children: []*model.Node{
			{ID: "f1", ParentID: model.RootID, Title: "dev", Type: model.TypeFolder, Children: []*model.Node{
				{ID: "f2", ParentID: "f1", Title: "go", Type: model.TypeFolder, Children: []*model.Node{
					{ID: "b2", ParentID: "f2", Title: "Go Docs", URL: "https://go.dev", Type: model.TypeBookmark},
				}},
				{ID: "b1", ParentID: "f1", Title: "GitHub", URL: "https://github.com", Type: model.TypeBookmark, Tags: []string{"code"}},
			}},
			{ID: "b3", ParentID: model.RootID, Title: "News", URL: "https://news.ycombinator.com", Type: model.TypeBookmark},
			{ID: "f3", ParentID: model.RootID, Title: "empty", Type: model.TypeFolder, Children: []*model.Node{}},
		},
	})
}

func flatIDs(t *model.Tree) []string {
	var ids []string
	for _, n := range t.Flatten() {
		ids = append(ids, n.ID)
	}
	return ids
}

// ownerCount returns how many children slices contain each id.
func ownerCount(t *model.Tree) map[string]int {
	counts := make(map[string]int)
	t.Walk(func(n *model.Node, _ int) bool {
		for _, c := range n.Children {
			counts[c.ID]++
		}
		return true
	})
	return counts
}

func TestScenario_TagMoveDelete(t *testing.T) {
	tree := scenarioTree()

	tree, diags := tree.BatchAddTags([]string{"101"}, []string{"dev", "dev"})
	assert.Check(t, is.Len(diags, 0))
	assert.DeepEqual(t, tree.Find("101").Tags, []string{"dev"})

	before, _ := json.Marshal(tree)
	tree, diags = tree.Move([]string{"1"}, model.RootID)
	assert.Check(t, is.Len(diags, 0))
	after, _ := json.Marshal(tree)
	assert.Equal(t, string(before), string(after))

	tree, diags = tree.Delete([]string{"1"})
	assert.Check(t, is.Len(diags, 0))
	assert.Check(t, is.Len(tree.Flatten(), 0))
	assert.Check(t, tree.Find("101") == nil)
}

func TestFlatten_PreOrderBookmarksOnly(t *testing.T) {
	tree := sampleTree()
	assert.DeepEqual(t, flatIDs(tree), []string{"b2", "b1", "b3"})
}

func TestAdd_DefaultsAndPlacement(t *testing.T) {
	tree := sampleTree()

	next, node, diags := tree.Add(model.NewNodeParams{URL: "https://example.com"}, "f2")
	assert.Check(t, is.Len(diags, 0))
	assert.Equal(t, node.Title, model.DefaultTitle)
	assert.Equal(t, node.ParentID, "f2")
	assert.Equal(t, node.Type, model.TypeBookmark)
	assert.DeepEqual(t, node.Tags, []string{})
	assert.Equal(t, node.Summary, "")
	assert.Check(t, !node.AIClassified)
	assert.Check(t, node.ID != "")
	assert.Check(t, node.DateAdded > 0)

	f2 := next.Find("f2")
	assert.Equal(t, f2.Children[len(f2.Children)-1].ID, node.ID)

	// The previous version is untouched.
	assert.Check(t, is.Len(tree.Find("f2").Children, 1))
}

func TestAdd_Folder(t *testing.T) {
	next, node, _ := sampleTree().Add(model.NewNodeParams{Title: "Reading", Type: model.TypeFolder, URL: "ignored"}, model.RootID)
	assert.Check(t, node.IsFolder())
	assert.Check(t, node.Children != nil)
	assert.Equal(t, node.URL, "")
	assert.Equal(t, next.Find(node.ID).Title, "Reading")
}

func TestAdd_MissingParentFallsBackToRoot(t *testing.T) {
	tests := []struct {
		name     string
		parentID string
		wantErr  error
	}{
		{"unknown id", "nope", model.ErrNotFound},
		{"bookmark as parent", "b1", model.ErrNotFolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, node, diags := sampleTree().Add(model.NewNodeParams{Title: "x", URL: "https://x"}, tt.parentID)
			assert.Assert(t, is.Len(diags, 1))
			assert.ErrorIs(t, diags[0], tt.wantErr)

			root := next.Root()
			assert.Equal(t, root.Children[len(root.Children)-1].ID, node.ID)
			assert.Equal(t, node.ParentID, model.RootID)
		})
	}
}

func TestUpdate(t *testing.T) {
	tree := sampleTree()

	next, diags := tree.Update("b1", model.NodePatch{
		Title:        strPtr("GitHub Home"),
		Summary:      strPtr("code hosting"),
		Tags:         []string{"git", "git", "code"},
		AIClassified: boolPtr(true),
	})
	assert.Check(t, is.Len(diags, 0))

	b1 := next.Find("b1")
	assert.Equal(t, b1.Title, "GitHub Home")
	assert.Equal(t, b1.Summary, "code hosting")
	assert.Equal(t, b1.URL, "https://github.com")
	assert.DeepEqual(t, b1.Tags, []string{"git", "code"})
	assert.Check(t, b1.AIClassified)

	assert.Equal(t, tree.Find("b1").Title, "GitHub")
}

func TestUpdate_MissingIsNoOp(t *testing.T) {
	tree := sampleTree()
	next, diags := tree.Update("missing", model.NodePatch{Title: strPtr("x")})
	assert.Check(t, next == tree)
	assert.Assert(t, is.Len(diags, 1))
	assert.ErrorIs(t, diags[0], model.ErrNotFound)
}

func TestUpdate_FolderIgnoresURL(t *testing.T) {
	next, _ := sampleTree().Update("f1", model.NodePatch{URL: strPtr("https://nope")})
	assert.Equal(t, next.Find("f1").URL, "")
}

func TestUpdate_SharesUntouchedSubtrees(t *testing.T) {
	tree := sampleTree()
	next, _ := tree.Update("b3", model.NodePatch{Title: strPtr("HN")})

	assert.Check(t, tree.Root() != next.Root())
	assert.Check(t, tree.Find("f1") == next.Find("f1"))
	assert.Check(t, tree.Find("b3") != next.Find("b3"))
}

func TestDelete_RemovesSubtree(t *testing.T) {
	tree := sampleTree()
	next, diags := tree.Delete([]string{"f1"})
	assert.Check(t, is.Len(diags, 0))

	assert.DeepEqual(t, flatIDs(next), []string{"b3"})
	for _, id := range []string{"f1", "f2", "b1", "b2"} {
		assert.Check(t, next.Find(id) == nil, id)
	}
	assert.DeepEqual(t, flatIDs(tree), []string{"b2", "b1", "b3"})
}

func TestDelete_MissingAndRoot(t *testing.T) {
	tree := sampleTree()
	next, diags := tree.Delete([]string{"missing", model.RootID})
	assert.Check(t, next == tree)
	assert.Assert(t, is.Len(diags, 2))
	assert.ErrorIs(t, diags[0], model.ErrNotFound)
	assert.ErrorIs(t, diags[1], model.ErrRoot)
}

func TestMove(t *testing.T) {
	tree := sampleTree()
	next, diags := tree.Move([]string{"b3", "f2"}, "f3")
	assert.Check(t, is.Len(diags, 0))

	f3 := next.Find("f3")
	assert.Assert(t, is.Len(f3.Children, 2))
	assert.Equal(t, f3.Children[0].ID, "b3")
	assert.Equal(t, f3.Children[1].ID, "f2")
	assert.Equal(t, next.Find("b3").ParentID, "f3")
	assert.Equal(t, next.Find("f2").ParentID, "f3")

	for _, c := range next.Root().Children {
		assert.Check(t, c.ID != "b3")
	}
	assert.Check(t, is.Len(next.Find("f1").Children, 1))

	// Subtree travels with the folder.
	assert.Equal(t, next.Find("b2").Title, "Go Docs")
}

func TestMove_SkipsSelfAndCycles(t *testing.T) {
	tree := sampleTree()

	next, diags := tree.Move([]string{"f2"}, "f2")
	assert.Check(t, next == tree)
	assert.Assert(t, is.Len(diags, 1))
	assert.ErrorIs(t, diags[0], model.ErrSelfMove)

	next, diags = tree.Move([]string{"f1"}, "f2")
	assert.Check(t, next == tree)
	assert.Assert(t, is.Len(diags, 1))
	assert.ErrorIs(t, diags[0], model.ErrCycle)
}

func TestMove_InvalidTargetMovesNothing(t *testing.T) {
	tree := sampleTree()

	next, diags := tree.Move([]string{"b3"}, "missing")
	assert.Check(t, next == tree)
	assert.ErrorIs(t, diags[0], model.ErrNotFound)

	next, diags = tree.Move([]string{"b3"}, "b1")
	assert.Check(t, next == tree)
	assert.ErrorIs(t, diags[0], model.ErrNotFolder)
}

func TestMutations_KeepSingleOwnership(t *testing.T) {
	tree := sampleTree()
	tree, _, _ = tree.Add(model.NewNodeParams{Title: "a", URL: "https://a"}, "f2")
	tree, _ = tree.Move([]string{"f2", "b3"}, "f3")
	tree, _ = tree.Move([]string{"b1"}, "f2")
	tree, _ = tree.Move([]string{"f3"}, "f1")
	tree, _ = tree.Delete([]string{"b2"})

	ids := map[string]bool{}
	tree.Walk(func(n *model.Node, depth int) bool {
		if depth > 0 {
			assert.Check(t, !ids[n.ID], "duplicate id %s", n.ID)
			ids[n.ID] = true
			parent := tree.Find(n.ParentID)
			assert.Assert(t, parent != nil, "orphan %s", n.ID)
		}
		assert.Equal(t, n.IsFolder(), n.Children != nil)
		return true
	})
	for id, count := range ownerCount(tree) {
		assert.Equal(t, count, 1, id)
	}
	assert.Equal(t, len(ids), 6)
}

func TestBatchAddTags(t *testing.T) {
	tree := sampleTree()
	next, diags := tree.BatchAddTags([]string{"b1", "b2", "f1", "nope"}, []string{"x", "x", "y"})

	assert.DeepEqual(t, next.Find("b1").Tags, []string{"code", "x", "y"})
	assert.DeepEqual(t, next.Find("b2").Tags, []string{"x", "y"})
	assert.Check(t, is.Len(next.Find("f1").Tags, 0))
	assert.Check(t, is.Len(next.Find("b3").Tags, 0))
	assert.Check(t, is.Len(diags, 2))
}

func TestBatchAddTags_CollapsesExistingDuplicates(t *testing.T) {
	tree := model.NewTree(&model.Node{ID: model.RootID, Type: model.TypeFolder, Children: []*model.Node{
		{ID: "b", ParentID: model.RootID, Title: "B", URL: "https://b", Type: model.TypeBookmark, Tags: []string{"a", "a"}},
	}})
	tree, _ = tree.BatchAddTags([]string{"b"}, []string{"a", "b", "a"})
	assert.DeepEqual(t, tree.Find("b").Tags, []string{"a", "b"})
}

func TestAllTagsAndCounts(t *testing.T) {
	tree, _ := sampleTree().BatchAddTags([]string{"b2", "b3"}, []string{"zeta", "alpha"})
	assert.DeepEqual(t, tree.AllTags(), []string{"alpha", "code", "zeta"})

	folders, bookmarks := tree.Counts()
	assert.Equal(t, folders, 3)
	assert.Equal(t, bookmarks, 3)
}

func TestFolders_Paths(t *testing.T) {
	tree, _, _ := model.DefaultTree().Add(model.NewNodeParams{Title: "Dev", Type: model.TypeFolder}, "1")

	var paths []string
	for _, f := range tree.Folders() {
		assert.Assert(t, f.Folder.IsFolder())
		paths = append(paths, f.Path)
	}
	assert.DeepEqual(t, paths, []string{"Bookmarks Bar", "Bookmarks Bar/Dev", "Other Bookmarks"})
}

func TestFilterByIDs(t *testing.T) {
	root := sampleTree().Root()

	filtered := model.FilterByIDs(root, map[string]bool{"f2": true, "b3": true})
	tree := model.NewTree(filtered)

	assert.DeepEqual(t, flatIDs(tree), []string{"b2", "b3"})
	assert.Check(t, tree.Find("f1") != nil)
	assert.Check(t, tree.Find("b1") == nil)
	assert.Check(t, tree.Find("f3") == nil)
}

func TestFilterByIDs_NothingSelected(t *testing.T) {
	sub := sampleTree().Find("f1")
	assert.Check(t, model.FilterByIDs(sub, map[string]bool{}) == nil)

	root := model.FilterByIDs(sampleTree().Root(), map[string]bool{})
	assert.Assert(t, root != nil)
	assert.Check(t, is.Len(root.Children, 0))
}

func TestMerge_CombinesFoldersByTitle(t *testing.T) {
	tree := model.NewTree(&model.Node{ID: model.RootID, Type: model.TypeFolder, Children: []*model.Node{
		{ID: "w", ParentID: model.RootID, Title: " work ", Type: model.TypeFolder, Children: []*model.Node{
			{ID: "old", ParentID: "w", Title: "Old", URL: "https://old", Type: model.TypeBookmark},
		}},
	}})

	incoming := []*model.Node{
		{ID: "w2", Title: "Work", Type: model.TypeFolder, Children: []*model.Node{
			{ID: "new", ParentID: "w2", Title: "New", URL: "https://new", Type: model.TypeBookmark},
			{ID: "dup", ParentID: "w2", Title: "Old", URL: "https://old", Type: model.TypeBookmark},
		}},
		{ID: "p", Title: "Personal", Type: model.TypeFolder, Children: []*model.Node{
			{ID: "p1", ParentID: "p", Title: "Blog", URL: "https://blog", Type: model.TypeBookmark},
		}},
	}

	merged := tree.Merge(incoming)
	root := merged.Root()
	assert.Assert(t, is.Len(root.Children, 2))

	work := root.Children[0]
	assert.Equal(t, work.ID, "w")
	assert.Assert(t, is.Len(work.Children, 3))
	assert.Equal(t, work.Children[1].Title, "New")
	assert.Equal(t, work.Children[2].URL, "https://old")
	assert.Check(t, work.Children[1].ID != "new")
	assert.Equal(t, work.Children[1].ParentID, "w")

	personal := root.Children[1]
	assert.Check(t, personal.ID != "p")
	assert.Equal(t, personal.ParentID, model.RootID)
	assert.Equal(t, personal.Children[0].ParentID, personal.ID)

	// Original tree unchanged.
	assert.Check(t, is.Len(tree.Find("w").Children, 1))
}

func TestMerge_RegeneratesCollidingIDs(t *testing.T) {
	tree := sampleTree()
	incoming := sampleTree().Find("f1").DeepCopy()
	incoming.Title = "dev copy"

	merged := tree.Merge([]*model.Node{incoming})
	counts := map[string]int{}
	merged.Walk(func(n *model.Node, _ int) bool {
		counts[n.ID]++
		return true
	})
	for id, c := range counts {
		assert.Equal(t, c, 1, id)
	}
}

func TestNode_JSONShape(t *testing.T) {
	tree := scenarioTree()
	data, err := json.Marshal(tree)
	assert.NilError(t, err)

	var raw map[string]any
	assert.NilError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, raw["id"], "root")
	assert.Equal(t, raw["type"], "folder")

	children := raw["children"].([]any)
	folder := children[0].(map[string]any)
	bookmark := folder["children"].([]any)[0].(map[string]any)
	_, hasChildren := bookmark["children"]
	assert.Check(t, !hasChildren)
	assert.Equal(t, bookmark["url"], "https://x.example")
	assert.Equal(t, bookmark["parentId"], "1")
}

func TestUnmarshalTree_NormalizesChildren(t *testing.T) {
	data := `{"id":"root","title":"Root","type":"folder","children":[
		{"id":"a","parentId":"root","title":"Empty","type":"folder"},
		{"id":"b","parentId":"root","title":"B","type":"bookmark","url":"https://b","children":[]}
	]}`

	tree, err := model.UnmarshalTree([]byte(data))
	assert.NilError(t, err)
	assert.Check(t, tree.Find("a").Children != nil)
	assert.Check(t, tree.Find("b").Children == nil)
}

func TestUnmarshalTree_RejectsUnknownType(t *testing.T) {
	data := `{"id":"root","title":"Root","type":"folder","children":[
		{"id":"a","parentId":"root","title":"A","type":"link","children":[
			{"id":"b","parentId":"a","title":"B","type":"bookmark","url":"https://b"}
		]}
	]}`

	_, err := model.UnmarshalTree([]byte(data))
	assert.ErrorIs(t, err, model.ErrUnknownType)
}

func TestUnmarshalTree_InfersMissingType(t *testing.T) {
	data := `{"id":"root","title":"Root","children":[
		{"id":"f","title":"F","children":[]},
		{"id":"b","title":"B","url":"https://b"}
	]}`

	tree, err := model.UnmarshalTree([]byte(data))
	assert.NilError(t, err)
	assert.Check(t, tree.Find("f").IsFolder())
	assert.Check(t, tree.Find("b").IsBookmark())
}

func TestNewTree_ForcesRoot(t *testing.T) {
	tree := model.NewTree(&model.Node{ID: "x", Type: model.TypeBookmark})
	assert.Equal(t, tree.Root().ID, model.RootID)
	assert.Check(t, tree.Root().IsFolder())

	empty := model.NewTree(nil)
	assert.Check(t, is.Len(empty.Root().Children, 0))
}

func TestDefaultTree(t *testing.T) {
	tree := model.DefaultTree()
	assert.DeepEqual(t, flatIDs(tree), []string{"101", "102"})
	assert.Equal(t, tree.Find("2").Title, "Other Bookmarks")
}

func TestMergeTags(t *testing.T) {
	got := model.MergeTags([]string{"a", " b ", ""}, []string{"b", "c", "a"})
	assert.DeepEqual(t, got, []string{"a", "b", "c"})
}
