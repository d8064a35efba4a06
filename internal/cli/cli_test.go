package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/bmai/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bmai runs one command against dir and returns stdout.
func bmai(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--data-dir", dir,
		"--log-level", "error",
	}, args...))
	err := a.run(root)
	return out.String(), err
}

// mustRun is bmai for commands that have to succeed.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := bmai(t, dir, args...)
	require.NoError(t, err, "bmai %s", strings.Join(args, " "))
	return out
}

// newEnglishDir returns a data dir with the language set to English.
func newEnglishDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, "settings", "set", "language", "en")
	return dir
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func TestTree_DefaultLibrary(t *testing.T) {
	out := mustRun(t, t.TempDir(), "tree")

	assert.Contains(t, out, "Bookmarks Bar/  [1]")
	assert.Contains(t, out, "  Google  <https://www.google.com>  [101]  #Search #Tool")
	assert.Contains(t, out, "Other Bookmarks/  [2]")
}

func TestAddListEdit(t *testing.T) {
	dir := newEnglishDir(t)

	out := mustRun(t, dir, "add", "https://go.dev", "--title", "Go", "--tags", "lang,go", "--parent", "2")
	id := firstField(out)
	require.NotEmpty(t, id)

	out = mustRun(t, dir, "list", "--tag", "lang")
	assert.Contains(t, out, id+"  Go  <https://go.dev>  #lang #go")

	out = mustRun(t, dir, "list", "--folder", "2")
	assert.Contains(t, out, "Go")
	assert.NotContains(t, out, "GitHub")

	mustRun(t, dir, "edit", id, "--title", "The Go Site", "--tags", "golang", "--summary", "Docs and tour")
	out = mustRun(t, dir, "list", "-v", "--tag", "golang")
	assert.Contains(t, out, "The Go Site")
	assert.Contains(t, out, "    Docs and tour")

	out = mustRun(t, dir, "tags")
	assert.Equal(t, "Code\nDev\nGit\nSearch\nTool\ngolang\n", out)

	_, err := bmai(t, dir, "edit", "missing", "--title", "x")
	assert.Error(t, err)
}

func TestAdd_DefaultTitleIsLocalized(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "add", "https://example.com")
	assert.Contains(t, out, "新书签")
}

func TestListRecent(t *testing.T) {
	dir := newEnglishDir(t)
	mustRun(t, dir, "add", "https://old.example", "--title", "Older")
	time.Sleep(5 * time.Millisecond)
	mustRun(t, dir, "add", "https://new.example", "--title", "Newest")

	out := mustRun(t, dir, "list", "--recent", "-n", "1")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "Newest")
}

func TestFolderMoveTagDelete(t *testing.T) {
	dir := newEnglishDir(t)

	folder := firstField(mustRun(t, dir, "add-folder", "Dev", "--parent", "1"))
	require.NotEmpty(t, folder)

	out := mustRun(t, dir, "mv", folder, "102", "missing")
	assert.Equal(t, "Moved 1 items.\n", out)
	assert.Contains(t, mustRun(t, dir, "tree"), "    GitHub")

	_, err := bmai(t, dir, "mv", "101", "102")
	assert.Error(t, err, "target must be a folder")

	out = mustRun(t, dir, "tag", "fav,daily", "101", "102")
	assert.Equal(t, "Tagged 2 bookmarks.\n", out)
	assert.Contains(t, mustRun(t, dir, "list", "--tag", "fav", "--tag", "daily"), "Google")

	out = mustRun(t, dir, "rm", folder)
	assert.Equal(t, "Deleted 1 items.\n", out)
	assert.NotContains(t, mustRun(t, dir, "tree"), "GitHub")
}

func TestSearch(t *testing.T) {
	dir := newEnglishDir(t)

	out := mustRun(t, dir, "search", "github")
	assert.Contains(t, out, "102  GitHub")
	assert.NotContains(t, out, "Google")

	out = mustRun(t, dir, "search", "--fuzzy", "ggl")
	assert.Contains(t, out, "Google")

	out = mustRun(t, dir, "search", "nothing-like-this")
	assert.Equal(t, "No results found\n", out)

	_, err := bmai(t, dir, "search", "--fuzzy", "--semantic", "x")
	assert.Error(t, err)
}

func TestSearchSemantic_RequiresProvider(t *testing.T) {
	dir := newEnglishDir(t)
	_, err := bmai(t, dir, "search", "--semantic", "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Custom API Key")
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newEnglishDir(t)
	mustRun(t, src, "add", "https://go.dev", "--title", "Go", "--tags", "lang", "--parent", "1")

	htmlPath := filepath.Join(t.TempDir(), "out", "bookmarks.html")
	out := mustRun(t, src, "export", "html", htmlPath)
	assert.Contains(t, out, "Exported 3 bookmarks, 2 folders")

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	tree, err := importer.ParseHTML(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, tree.Flatten(), 3)

	dst := newEnglishDir(t)
	out = mustRun(t, dst, "import", htmlPath)
	assert.Equal(t, "Import Successful. Imported 3 bookmarks.\n", out)

	// the imported "Bookmarks Bar" merges into the existing one
	tree2 := mustRun(t, dst, "tree")
	assert.Equal(t, 1, strings.Count(tree2, "Bookmarks Bar/"))
	assert.Contains(t, tree2, "Go  <https://go.dev>")

	jsonPath := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, src, "export", "json", jsonPath)
	out = mustRun(t, newEnglishDir(t), "import", jsonPath)
	assert.Equal(t, "Import Successful. Imported 3 bookmarks.\n", out)

	_, err = bmai(t, src, "export", "pdf", jsonPath)
	assert.Error(t, err)
}

func TestImport_Select(t *testing.T) {
	dir := newEnglishDir(t)
	file := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"version":"1.0","bookmarks":{"id":"root","title":"Root","type":"folder","dateAdded":1,"children":[
		{"id":"f","parentId":"root","title":"Reading","type":"folder","dateAdded":1,"children":[
			{"id":"a","parentId":"f","title":"A","url":"https://a.example","type":"bookmark","dateAdded":1},
			{"id":"b","parentId":"f","title":"B","url":"https://b.example","type":"bookmark","dateAdded":1}
		]}
	]}}`), 0o644))

	out := mustRun(t, dir, "import", file, "--select", ",")
	assert.Equal(t, "Nothing selected.\n", out)

	out = mustRun(t, dir, "import", file, "--select", "a")
	assert.Equal(t, "Import Successful. Imported 1 bookmarks.\n", out)

	list := mustRun(t, dir, "list")
	assert.Contains(t, list, "https://a.example")
	assert.NotContains(t, list, "https://b.example")
	assert.Contains(t, mustRun(t, dir, "tree"), "Reading")
}

func TestImport_SelectRejectsHTML(t *testing.T) {
	dir := newEnglishDir(t)
	file := filepath.Join(t.TempDir(), "bookmarks.html")
	require.NoError(t, os.WriteFile(file, []byte(`<DL><p>
    <DT><A HREF="https://a.example">A</A>
</DL><p>`), 0o644))

	_, err := bmai(t, dir, "import", file, "--select", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON backup")
	assert.NotContains(t, mustRun(t, dir, "list"), "https://a.example")
}

func TestImport_InvalidFile(t *testing.T) {
	dir := newEnglishDir(t)
	file := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"bookmarks":`), 0o644))

	_, err := bmai(t, dir, "import", file)
	require.ErrorIs(t, err, importer.ErrInvalidFile)
	assert.Contains(t, err.Error(), "Invalid File")
}

func TestSettings(t *testing.T) {
	dir := newEnglishDir(t)
	mustRun(t, dir, "settings", "set", "customApiKey", "sk-1234567890abcd")
	mustRun(t, dir, "settings", "set", "webDav.password", "hunter2")

	out := mustRun(t, dir, "settings", "show")
	assert.Contains(t, out, "language: en")
	assert.Contains(t, out, "sk-1...abcd")
	assert.NotContains(t, out, "hunter2")

	out = mustRun(t, dir, "settings", "show", "--reveal")
	assert.Contains(t, out, "hunter2")

	_, err := bmai(t, dir, "settings", "set", "theme", "neon")
	assert.Error(t, err)
	_, err = bmai(t, dir, "settings", "set", "nope", "x")
	assert.Error(t, err)
}

func TestOrganize_WithoutProvider(t *testing.T) {
	dir := newEnglishDir(t)
	_, err := bmai(t, dir, "organize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please configure Custom API Key")

	_, err = bmai(t, dir, "ai", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI connection test failed")
}

func TestOrganize_WithProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"{\"summary\":\"A page.\",\"tags\":[\"reference\"],\"category\":\"Docs\"}"}}]}`)
	}))
	defer srv.Close()

	dir := newEnglishDir(t)
	mustRun(t, dir, "settings", "set", "aiProvider", "custom")
	mustRun(t, dir, "settings", "set", "customApiKey", "sk-test")
	mustRun(t, dir, "settings", "set", "aiBaseUrl", srv.URL)

	out := mustRun(t, dir, "organize")
	assert.Equal(t, "Organized 2 bookmarks.\n", out)

	out = mustRun(t, dir, "organize")
	assert.Equal(t, "All bookmarks are already classified!\n", out)

	out = mustRun(t, dir, "list", "-v", "--tag", "reference")
	assert.Contains(t, out, "A page.")

	out = mustRun(t, dir, "ai", "test")
	assert.Equal(t, "AI connection test passed!\n", out)
}

func TestSync(t *testing.T) {
	var (
		mu   sync.Mutex
		body []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			body, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			w.Write(body)
		}
	}))
	defer srv.Close()

	dir := newEnglishDir(t)
	_, err := bmai(t, dir, "sync", "pull")
	assert.Error(t, err, "no URL configured")

	mustRun(t, dir, "settings", "set", "webDav.url", srv.URL+"/bookmarks.json")
	assert.Contains(t, mustRun(t, dir, "sync", "status"), "Never")

	out := mustRun(t, dir, "sync", "test")
	assert.Equal(t, "WebDAV connection successful!\n", out)

	out = mustRun(t, dir, "sync", "now")
	assert.Equal(t, "Sync Success\n", out)
	assert.NotContains(t, mustRun(t, dir, "sync", "status"), "Never")

	other := newEnglishDir(t)
	mustRun(t, other, "settings", "set", "webDav.url", srv.URL+"/bookmarks.json")
	out = mustRun(t, other, "sync", "pull")
	assert.Equal(t, "Imported 2 bookmarks.\n", out)
}

func TestSync_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := newEnglishDir(t)
	mustRun(t, dir, "settings", "set", "webDav.url", srv.URL)
	_, err := bmai(t, dir, "sync", "now")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := newEnglishDir(t)
	mustRun(t, dir, "rm", "101", "102")
	mustRun(t, dir, "add", srv.URL+"/ok", "--title", "Alive")
	gone := firstField(mustRun(t, dir, "add", srv.URL+"/gone", "--title", "Gone"))

	out := mustRun(t, dir, "check", "-q")
	assert.Contains(t, out, "dead         "+gone)
	assert.Contains(t, out, "1 healthy, 1 dead, 0 unreachable")

	out = mustRun(t, dir, "check", "-q", "--delete-dead")
	assert.Contains(t, out, "Deleted 1 items.")
	assert.NotContains(t, mustRun(t, dir, "list"), "Gone")
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "--storage", "sqlite", "add", "https://go.dev", "--title", "Go")

	out := mustRun(t, dir, "--storage", "sqlite", "list")
	assert.Contains(t, out, "Go")
	assert.FileExists(t, filepath.Join(dir, "bookmarks.db"))

	_, err := bmai(t, dir, "--storage", "redis", "list")
	assert.Error(t, err)
}

func TestRun_ClosesLibraryOnError(t *testing.T) {
	dir := t.TempDir()
	root, a := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--data-dir", dir,
		"--storage", "sqlite",
		"--log-level", "error",
		"mv", "101", "102",
	})

	require.Error(t, a.run(root))
	assert.Nil(t, a.lib)

	out := mustRun(t, dir, "--storage", "sqlite", "list")
	assert.Contains(t, out, "101")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("data_dir: "+dataDir+"\nstorage: sqlite\nlog_level: error\n"), 0o644))

	root, a := newRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", cfg, "tags"})
	require.NoError(t, a.run(root))

	assert.FileExists(t, filepath.Join(dataDir, "bookmarks.db"))
}
