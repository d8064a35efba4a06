package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/bmai/internal/model"
)

// ErrInvalidFile is returned for input that is not a recognizable bookmark
// export.
var ErrInvalidFile = errors.New("invalid file")

// ParseJSON accepts either a full backup document ({"bookmarks": <tree>, ...})
// or a bare tree whose id is "root".
func ParseJSON(data []byte) (*model.Tree, error) {
	var doc struct {
		Bookmarks json.RawMessage `json:"bookmarks"`
		ID        string          `json:"id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	raw := doc.Bookmarks
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if doc.ID != model.RootID {
			return nil, fmt.Errorf("%w: no bookmark tree found", ErrInvalidFile)
		}
		raw = data
	}

	tree, err := model.UnmarshalTree(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return tree, nil
}
