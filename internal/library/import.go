package library

import (
	"bytes"
	"context"
	"errors"

	"github.com/nikbrunner/bmai/internal/importer"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/webdav"
)

// ErrNoCandidate is returned by ConfirmImport when nothing is staged.
var ErrNoCandidate = errors.New("no import staged")

// StageJSON parses a JSON backup or bare tree and stages it for import.
// The current tree is not touched.
func (l *Library) StageJSON(data []byte) (*model.Tree, error) {
	tree, err := importer.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	l.stage(tree)
	return tree, nil
}

// StageHTML parses a Netscape bookmark file and stages it for import.
func (l *Library) StageHTML(data []byte) (*model.Tree, error) {
	tree, err := importer.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	l.stage(tree)
	return tree, nil
}

// StageRemote downloads the WebDAV backup and stages it for import.
func (l *Library) StageRemote(ctx context.Context) (*model.Tree, error) {
	data, err := l.webdavClient().Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return l.StageJSON(data)
}

func (l *Library) stage(tree *model.Tree) {
	l.mu.Lock()
	l.candidate = tree
	l.mu.Unlock()
	l.log.WithField("count", len(tree.Flatten())).Debug("import staged")
}

// ImportCandidate returns the staged tree, or nil.
func (l *Library) ImportCandidate() *model.Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.candidate
}

// CancelImport drops the staged tree.
func (l *Library) CancelImport() {
	l.mu.Lock()
	l.candidate = nil
	l.mu.Unlock()
}

// ConfirmImport merges the selected part of the staged tree into the root
// folder and clears the stage. A nil selection imports everything. It
// returns the number of bookmarks imported.
func (l *Library) ConfirmImport(selected map[string]bool) (int, error) {
	l.mu.Lock()
	candidate := l.candidate
	l.candidate = nil
	l.mu.Unlock()

	if candidate == nil {
		return 0, ErrNoCandidate
	}

	root := candidate.Root()
	if selected != nil {
		root = model.FilterByIDs(root, selected)
	}
	if root == nil || len(root.Children) == 0 {
		return 0, nil
	}

	count := len(model.NewTree(root).Flatten())
	_, err := l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		return t.Merge(root.Children), nil
	})
	if err != nil {
		return 0, err
	}
	l.log.WithField("count", count).Info("import merged")
	return count, nil
}

// webdavClient builds a client for the configured endpoint.
func (l *Library) webdavClient() *webdav.Client {
	s := l.Settings()
	return webdav.NewClient(webdav.Config{
		URL:      s.WebDAV.URL,
		Username: s.WebDAV.Username,
		Password: s.WebDAV.Password,
	}, l.httpClient, l.log)
}
