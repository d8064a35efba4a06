package library

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmai/internal/ai"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/search"
	"github.com/sirupsen/logrus"
)

// OrganizeBatchSize is the number of bookmarks SmartOrganize handles per run.
const OrganizeBatchSize = 5

// ErrAllClassified is returned by SmartOrganize when no bookmark is left to
// classify.
var ErrAllClassified = errors.New("all bookmarks are already classified")

// aiClient builds a client from the current settings. It fails before any
// request when the provider cannot be used.
func (l *Library) aiClient() (*ai.Client, error) {
	return ai.NewClient(ai.ConfigFromSettings(l.Settings()),
		ai.WithHTTPClient(l.httpClient),
		ai.WithLogger(l.log),
	)
}

// TestAI sends a minimal request to the configured provider.
func (l *Library) TestAI(ctx context.Context) error {
	client, err := l.aiClient()
	if err != nil {
		return err
	}
	return client.TestConnection(ctx)
}

// Annotate analyzes each listed bookmark that has a URL and records the
// summary, merges the suggested tags and marks it classified. A failed
// analysis records the placeholder result. It returns the number of
// bookmarks annotated.
func (l *Library) Annotate(ctx context.Context, ids []string) (int, error) {
	client, err := l.aiClient()
	if err != nil {
		return 0, err
	}

	targets := withURL(search.ByIDs(l.Flat(), ids))
	count := 0
	for _, b := range targets {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		analysis, err := client.Analyze(ctx, b.Title, b.URL)
		if err != nil {
			l.log.WithFields(logrus.Fields{"op": "annotate", "id": b.ID}).WithError(err).Warn("AI analysis failed")
			fallback := ai.Fallback()
			analysis = &fallback
		}
		if err := l.applyAnalysis(b.ID, analysis); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// SmartOrganize classifies up to OrganizeBatchSize unclassified bookmarks,
// one after another. Failed items are skipped and stay unclassified. It
// returns the number of bookmarks organized.
func (l *Library) SmartOrganize(ctx context.Context) (int, error) {
	client, err := l.aiClient()
	if err != nil {
		return 0, err
	}

	var batch []*model.Node
	for _, b := range withURL(l.Flat()) {
		if !b.AIClassified {
			batch = append(batch, b)
		}
		if len(batch) == OrganizeBatchSize {
			break
		}
	}
	if len(batch) == 0 {
		return 0, ErrAllClassified
	}

	count := 0
	for _, b := range batch {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		analysis, err := client.Analyze(ctx, b.Title, b.URL)
		if err != nil {
			l.log.WithFields(logrus.Fields{"op": "organize", "id": b.ID}).WithError(err).Warn("skipping bookmark")
			continue
		}
		if err := l.applyAnalysis(b.ID, analysis); err != nil {
			return count, err
		}
		count++
	}
	l.log.WithField("count", count).Info("smart organize finished")
	return count, nil
}

// applyAnalysis merges analysis into the bookmark as it is at apply time.
func (l *Library) applyAnalysis(id string, analysis *ai.Analysis) error {
	classified := true
	summary := analysis.Summary
	_, err := l.mutate(func(t *model.Tree) (*model.Tree, []model.Diagnostic) {
		n := t.Find(id)
		if n == nil {
			return t, []model.Diagnostic{{Op: "annotate", ID: id, Err: model.ErrNotFound}}
		}
		return t.Update(id, model.NodePatch{
			Tags:         model.MergeTags(n.Tags, analysis.Tags),
			Summary:      &summary,
			AIClassified: &classified,
		})
	})
	return err
}

// SemanticSearch asks the AI provider which bookmarks match query. Provider
// failures are logged and yield no results; configuration problems are
// returned.
func (l *Library) SemanticSearch(ctx context.Context, query string) ([]*model.Node, error) {
	if query == "" {
		return nil, nil
	}
	client, err := l.aiClient()
	if err != nil {
		return nil, err
	}

	candidates := l.Flat()
	if len(candidates) == 0 {
		return nil, nil
	}

	ids, err := client.Search(ctx, query, candidates)
	if err != nil {
		l.log.WithError(err).Warn("semantic search failed")
		return nil, nil
	}
	return search.ByIDs(candidates, ids), nil
}

func withURL(nodes []*model.Node) []*model.Node {
	var out []*model.Node
	for _, n := range nodes {
		if n.IsBookmark() && n.URL != "" {
			out = append(out, n)
		}
	}
	return out
}
