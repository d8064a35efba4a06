package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/settings"
)

// Document keys, shared with the browser extension's local storage.
const (
	TreeKey     = "ai_bookmarks_tree"
	SettingsKey = "ai_bm_settings"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	// ErrNotFound is returned by Get when no document is stored under a key.
	ErrNotFound = errors.New("document not found")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Storage persists whole JSON documents by key. Every Set replaces the
// previous document.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Close() error
}

// JSONStorage implements Storage with one <key>.json file per document.
type JSONStorage struct {
	dir string
}

// NewJSONStorage creates a new JSONStorage rooted at dir.
func NewJSONStorage(dir string) *JSONStorage {
	return &JSONStorage{dir: dir}
}

// Path returns the storage directory.
func (s *JSONStorage) Path() string {
	return s.dir
}

func (s *JSONStorage) file(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the document stored under key.
func (s *JSONStorage) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.file(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the document under key.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Set(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	// Replace via rename; readers see the old or the new document.
	tmp := s.file(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.file(key))
}

// Close is a no-op for file storage.
func (s *JSONStorage) Close() error {
	return nil
}

// DefaultDataDir returns the default data directory: ~/.config/bmai
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmai"), nil
}

// Open opens the named backend inside dir.
func Open(backend, dir string) (Storage, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStorage(dir), nil
	case BackendSQLite:
		return NewSQLiteStorage(filepath.Join(dir, "bookmarks.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// LoadTree reads the bookmark tree, seeding the default tree when nothing
// has been stored yet.
func LoadTree(s Storage) (*model.Tree, error) {
	data, err := s.Get(TreeKey)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultTree(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	tree, err := model.UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return tree, nil
}

// SaveTree overwrites the stored bookmark tree.
func SaveTree(s Storage, tree *model.Tree) error {
	data, err := tree.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if err := s.Set(TreeKey, data); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

// LoadSettings reads the settings document overlaid on the defaults.
func LoadSettings(s Storage) (settings.Settings, error) {
	data, err := s.Get(SettingsKey)
	if errors.Is(err, ErrNotFound) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return settings.Defaults(), fmt.Errorf("load settings: %w", err)
	}
	return settings.Decode(data)
}

// SaveSettings overwrites the stored settings document.
func SaveSettings(s Storage, st settings.Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.Set(SettingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
