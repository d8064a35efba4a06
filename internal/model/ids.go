package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// nowMillis returns the current time in epoch milliseconds.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// NewID creates a node id: creation timestamp followed by a random suffix.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return strconv.FormatInt(nowMillis(), 10) + suffix
}
