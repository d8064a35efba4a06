// Package library is the session layer around the bookmark tree: it owns the
// current tree and settings, persists every change, and runs the AI, import
// and sync workflows on top of them.
package library

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/settings"
	"github.com/nikbrunner/bmai/internal/storage"
	"github.com/sirupsen/logrus"
)

// Params configures Open.
type Params struct {
	Storage storage.Storage

	// Optional.
	Log          logrus.FieldLogger
	HTTPClient   *http.Client
	OnDiagnostic func(model.Diagnostic)
}

// Library guards the current tree and settings. Every published tree is
// immutable; mutations swap in a new version under the write lock.
type Library struct {
	mu        sync.RWMutex
	store     storage.Storage
	tree      *model.Tree
	settings  settings.Settings
	selected  map[string]bool
	candidate *model.Tree

	log        logrus.FieldLogger
	httpClient *http.Client
	onDiag     func(model.Diagnostic)

	subsMu sync.Mutex
	subs   map[chan struct{}]struct{}
}

// Open loads the tree and settings from storage. A store without a tree is
// seeded with the default tree.
func Open(p Params) (*Library, error) {
	if p.Storage == nil {
		return nil, errors.New("library: storage is required")
	}
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	hc := p.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	tree, err := storage.LoadTree(p.Storage)
	if err != nil {
		return nil, err
	}
	st, err := storage.LoadSettings(p.Storage)
	if err != nil {
		log.WithError(err).Warn("stored settings unreadable, using defaults")
	}

	return &Library{
		store:      p.Storage,
		tree:       tree,
		settings:   st,
		selected:   map[string]bool{},
		log:        log,
		httpClient: hc,
		onDiag:     p.OnDiagnostic,
		subs:       map[chan struct{}]struct{}{},
	}, nil
}

// Refresh reloads the tree from storage, dropping the in-memory version.
func (l *Library) Refresh() error {
	tree, err := storage.LoadTree(l.store)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.tree = tree
	l.mu.Unlock()
	l.notify()
	return nil
}

// Tree returns the current tree version.
func (l *Library) Tree() *model.Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree
}

// Flat returns every bookmark in tree order.
func (l *Library) Flat() []*model.Node {
	return l.Tree().Flatten()
}

// AllTags returns the sorted set of tags in use.
func (l *Library) AllTags() []string {
	return l.Tree().AllTags()
}

// Settings returns a copy of the current settings.
func (l *Library) Settings() settings.Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settings
}

// Translator returns a translator for the configured language.
func (l *Library) Translator() *i18n.Translator {
	return i18n.New(l.Settings().Language)
}

// UpdateSettings applies fn to a copy of the settings, validates and
// persists the result.
func (l *Library) UpdateSettings(fn func(*settings.Settings) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.settings
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := storage.SaveSettings(l.store, next); err != nil {
		return err
	}
	l.settings = next
	return nil
}

// mutate runs fn against the current tree under the write lock. A changed
// tree is persisted before it replaces the current one, so memory and
// storage never disagree.
func (l *Library) mutate(fn func(*model.Tree) (*model.Tree, []model.Diagnostic)) ([]model.Diagnostic, error) {
	l.mu.Lock()
	next, diags := fn(l.tree)
	changed := next != l.tree
	if changed {
		if err := storage.SaveTree(l.store, next); err != nil {
			l.mu.Unlock()
			return diags, err
		}
		l.tree = next
	}
	l.mu.Unlock()

	l.report(diags)
	if changed {
		l.notify()
	}
	return diags, nil
}

func (l *Library) report(diags []model.Diagnostic) {
	for _, d := range diags {
		l.log.WithFields(logrus.Fields{"op": d.Op, "id": d.ID}).WithError(d.Err).Debug("ignored input")
		if l.onDiag != nil {
			l.onDiag(d)
		}
	}
}

// AddBookmark adds a node under parentID, falling back to the root folder.
func (l *Library) AddBookmark(params model.NewNodeParams, parentID string) (*model.Node, []model.Diagnostic, error) {
	var added *model.Node
	diags, err := l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		next, n, diags := t.Add(params, parentID)
		added = n
		return next, diags
	})
	if err != nil {
		return nil, diags, err
	}
	return added, diags, nil
}

// UpdateBookmark applies patch to the node id.
func (l *Library) UpdateBookmark(id string, patch model.NodePatch) ([]model.Diagnostic, error) {
	return l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		return t.Update(id, patch)
	})
}

// DeleteBookmarks removes the nodes and their subtrees and clears the
// selection.
func (l *Library) DeleteBookmarks(ids []string) ([]model.Diagnostic, error) {
	defer l.ClearSelection()
	return l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		return t.Delete(ids)
	})
}

// MoveBookmarks moves the nodes into targetID and clears the selection.
func (l *Library) MoveBookmarks(ids []string, targetID string) ([]model.Diagnostic, error) {
	defer l.ClearSelection()
	return l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		return t.Move(ids, targetID)
	})
}

// BatchAddTags adds tags to the bookmarks and clears the selection.
func (l *Library) BatchAddTags(ids []string, tags []string) ([]model.Diagnostic, error) {
	defer l.ClearSelection()
	return l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		return t.BatchAddTags(ids, tags)
	})
}

// ToggleSelection flips id in the selection. Without multi the selection
// becomes just id.
func (l *Library) ToggleSelection(id string, multi bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !multi {
		l.selected = map[string]bool{id: true}
		return
	}
	if l.selected[id] {
		delete(l.selected, id)
	} else {
		l.selected[id] = true
	}
}

// SelectAll replaces the selection with ids.
func (l *Library) SelectAll(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		l.selected[id] = true
	}
}

// ClearSelection empties the selection.
func (l *Library) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = map[string]bool{}
}

// Selection returns the selected ids in tree order. Ids no longer in the
// tree are left out.
func (l *Library) Selection() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var ids []string
	l.tree.Walk(func(n *model.Node, _ int) bool {
		if l.selected[n.ID] {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Subscribe returns a channel that receives a signal after each tree change.
// Signals coalesce; a slow reader sees at least one pending signal. Call the
// returned function to unsubscribe.
func (l *Library) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	l.subsMu.Lock()
	l.subs[ch] = struct{}{}
	l.subsMu.Unlock()

	return ch, func() {
		l.subsMu.Lock()
		delete(l.subs, ch)
		l.subsMu.Unlock()
	}
}

func (l *Library) notify() {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close releases the storage backend.
func (l *Library) Close() error {
	if err := l.store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
