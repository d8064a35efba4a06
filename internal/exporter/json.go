package exporter

import (
	"encoding/json"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/settings"
)

// BackupVersion is written into every backup document.
const BackupVersion = "1.0"

// Backup is the full-state document used for JSON export and WebDAV sync.
type Backup struct {
	Version   string            `json:"version"`
	Bookmarks *model.Tree       `json:"bookmarks"`
	Settings  settings.Settings `json:"settings"`
}

// NewBackup captures tree and settings in a backup document.
func NewBackup(tree *model.Tree, s settings.Settings) Backup {
	return Backup{Version: BackupVersion, Bookmarks: tree, Settings: s}
}

// ExportJSON renders the backup document, indented for humans.
func ExportJSON(tree *model.Tree, s settings.Settings) ([]byte, error) {
	return json.MarshalIndent(NewBackup(tree, s), "", "  ")
}
