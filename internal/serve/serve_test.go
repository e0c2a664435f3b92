package serve

import (
	"bufio"
	"context"
	"errors"
	"honours/internal/domain/config"
	"honours/internal/domain/sheet"
	"honours/internal/fetch"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Build.ClientDir = filepath.Join(root, "client")
	cfg.Build.TmpDir = filepath.Join(root, ".tmp")
	cfg.Build.DistDir = filepath.Join(root, "dist")
	cfg.Build.DataFile = filepath.Join(root, "client", "data.json")
	cfg.Serve.Debounce = 20 * time.Millisecond
	return cfg
}

func put(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStaticServesTmpBeforeClient(t *testing.T) {
	cfg := testConfig(t)
	put(t, cfg.Build.TmpDir, "index.html", "<html><body><p>built</p></body></html>")
	put(t, cfg.Build.ClientDir, "index.html", "<html><body><p>source</p></body></html>")
	put(t, cfg.Build.ClientDir, "images/crest.svg", "<svg/>")

	s := New(cfg, nil)
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "built")
	assert.Contains(t, body, `new EventSource("/__reload")`)
	assert.Less(t, strings.Index(body, "EventSource"), strings.Index(body, "</body>"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = get(t, h, "/images/crest.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg/>", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/missing.js").Code)
	_, ok := s.resolve("/../../etc/passwd")
	assert.False(t, ok)
}

func TestInjectReloadKeepsOffsetsWithWideRunes(t *testing.T) {
	// İ lower-cases to three bytes, the Kelvin sign to one
	for _, page := range []string{
		"<html><body><p>İİİ Gökçe</p></body></html>",
		"<html><body><p>\u212a\u212a Kelvin</p></BODY></html>",
	} {
		out := string(InjectReload([]byte(page)))
		i := strings.LastIndex(strings.ToLower(out), "</body>")
		require.Greater(t, i, 0, page)
		assert.True(t, strings.HasSuffix(out[:i], "</script>"), page)
		assert.Equal(t, page, strings.Replace(out, reloadScript, "", 1))
	}
}

func TestInjectReloadWithoutBody(t *testing.T) {
	out := string(InjectReload([]byte("<p>fragment</p>")))
	assert.True(t, strings.HasPrefix(out, "<p>fragment</p><script>"))
}

func TestReloadIsSkippedOnceAfterError(t *testing.T) {
	s := New(testConfig(t), nil)
	ch, cancel := s.subscribe()
	defer cancel()

	s.ReportBuildError("Error building styles", errors.New("bad <css>"))
	ev := <-ch
	assert.Equal(t, eventNotify, ev.name)
	assert.Contains(t, ev.data, "Error building styles")
	assert.Contains(t, ev.data, "bad &lt;css&gt;")
	assert.NotEmpty(t, s.currentNotice())

	s.reload()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %q", ev.name)
	default:
	}
	assert.NotEmpty(t, s.currentNotice())

	s.reload()
	ev = <-ch
	assert.Equal(t, eventReload, ev.name)
	assert.Empty(t, s.currentNotice())
}

func TestSSEStream(t *testing.T) {
	s := New(testConfig(t), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+reloadPath, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: hello", readEventName(t, r))

	s.ReportBuildError("Error building JavaScript", errors.New("line one\nline two"))
	assert.Equal(t, "event: notify", readEventName(t, r))
}

func readEventName(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var name string
	for {
		line, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			t.Fatal("stream closed")
		}
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			name = line
		}
		if line == "" && name != "" {
			return name
		}
	}
}

func TestClassify(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg, nil)
	tests := map[string]Change{
		filepath.Join(cfg.Build.ClientDir, "styles", "main.css"):    ChangeStyles,
		filepath.Join(cfg.Build.ClientDir, "images", "a.PNG"):       ChangeImages,
		filepath.Join(cfg.Build.ClientDir, "main-page.tmpl"):        ChangeTemplates,
		cfg.Build.DataFile:                                          ChangeTemplates,
		filepath.Join(cfg.Build.ClientDir, "scripts", "main.js"):    ChangeScripts,
		filepath.Join(cfg.Build.ClientDir, "robots.txt"):            ChangeNone,
		filepath.Join(cfg.Build.ClientDir, "other", "data.json.bak"): ChangeNone,
	}
	for file, want := range tests {
		assert.Equal(t, want, s.Classify(file), file)
	}
}

const (
	topTmpl    = `{{define "top"}}<html><body>{{end}}`
	bottomTmpl = `{{define "bottom"}}</body></html>{{end}}`
)

func TestWatchRebuildsTemplatesAndReloads(t *testing.T) {
	cfg := testConfig(t)
	put(t, cfg.Build.ClientDir, "top.tmpl", topTmpl)
	put(t, cfg.Build.ClientDir, "bottom.tmpl", bottomTmpl)
	put(t, cfg.Build.ClientDir, "main-page.tmpl", `{{template "top" .}}v1{{template "bottom" .}}`)
	put(t, cfg.Build.ClientDir, "data.json", `{"options":{},"profiles":[],"orders":[]}`)

	s := New(cfg, nil)
	events, unsubscribe := s.subscribe()
	defer unsubscribe()

	_, err := s.startWatch()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	put(t, cfg.Build.ClientDir, "main-page.tmpl", `{{template "top" .}}v2{{template "bottom" .}}`)
	ev := waitEvent(t, events)
	assert.Equal(t, eventReload, ev.name)

	b, err := os.ReadFile(filepath.Join(cfg.Build.TmpDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "v2")

	// a broken template is reported in-page and the watcher keeps going
	put(t, cfg.Build.ClientDir, "main-page.tmpl", `{{template "top" .}}{{.Nope}}{{template "bottom" .}}`)
	ev = waitEvent(t, events)
	assert.Equal(t, eventNotify, ev.name)
	assert.Contains(t, ev.data, "Error rendering templates")

	put(t, cfg.Build.ClientDir, "main-page.tmpl", `{{template "top" .}}v3{{template "bottom" .}}`)
	ev = waitEvent(t, events)
	assert.Equal(t, eventReload, ev.name)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func waitEvent(t *testing.T, ch <-chan event) event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return event{}
	}
}

func TestServeDistRejectsMissingDir(t *testing.T) {
	err := ServeDist(context.Background(), filepath.Join(t.TempDir(), "nope"), "127.0.0.1:0", nil)
	require.Error(t, err)
}

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) Download(ctx context.Context, path string) (sheet.Document, error) {
	f.calls.Add(1)
	doc := fetch.Reshape(sheet.Payload{})
	return doc, fetch.WriteDocument(path, doc)
}

func TestListenAndServeDownloadsOnce(t *testing.T) {
	cfg := testConfig(t)
	put(t, cfg.Build.ClientDir, "top.tmpl", topTmpl)
	put(t, cfg.Build.ClientDir, "bottom.tmpl", bottomTmpl)
	put(t, cfg.Build.ClientDir, "main-page.tmpl", `{{template "top" .}}ok{{template "bottom" .}}`)
	cfg.Build.ScriptEntries = nil
	cfg.Build.OtherScripts = nil

	f := &countingFetcher{}
	s := New(cfg, nil)
	s.Steps().Fetcher = f

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	index := filepath.Join(cfg.Build.TmpDir, "index.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(index)
		return err == nil
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, int32(1), f.calls.Load())
}
