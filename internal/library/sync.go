package library

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikbrunner/bmai/internal/exporter"
	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/settings"
	"github.com/nikbrunner/bmai/internal/webdav"
)

var nowMillis = func() int64 { return time.Now().UnixMilli() }

// TestWebDAV checks that the configured WebDAV endpoint answers.
func (l *Library) TestWebDAV(ctx context.Context) webdav.Result {
	res := l.webdavClient().Check(ctx)
	return l.localize(res, i18n.WebDAVSuccess)
}

// SaveToWebDAV uploads the full backup document (tree and settings),
// overwriting the remote copy. On success the sync time is recorded.
func (l *Library) SaveToWebDAV(ctx context.Context) webdav.Result {
	l.mu.RLock()
	doc, err := json.Marshal(exporter.NewBackup(l.tree, l.settings))
	l.mu.RUnlock()
	if err != nil {
		return webdav.Result{Success: false, Message: fmt.Sprintf("encode backup: %v", err), Err: err}
	}

	res := l.webdavClient().Save(ctx, doc)
	if res.Success {
		now := nowMillis()
		if err := l.UpdateSettings(func(s *settings.Settings) error {
			s.WebDAVSync.LastSyncTime = now
			return nil
		}); err != nil {
			l.log.WithError(err).Warn("could not record sync time")
		}
		l.log.WithField("bytes", len(doc)).Info("saved to WebDAV")
	}
	return l.localize(res, i18n.SyncSuccess)
}

// localize fills in user-facing messages in the configured language.
func (l *Library) localize(res webdav.Result, success string) webdav.Result {
	tr := l.Translator()
	switch {
	case res.Success:
		res.Message = tr.T(success)
	case res.Err != nil:
		res.Message = fmt.Sprintf("%s (%s)", tr.T(i18n.WebDAVFailed), res.Message)
	}
	return res
}
