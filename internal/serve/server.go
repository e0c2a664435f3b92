// Package serve runs the development server: .tmp and client served side by
// side, a watch loop that recompiles what changed, and live reload over
// server-sent events.
package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"honours/internal/build"
	buildmode "honours/internal/domain/build"
	"honours/internal/domain/config"
	"honours/internal/pipeline"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const reloadPath = "/__reload"

// reloadScript is injected into every HTML page the dev server returns.
const reloadScript = `<script>(function(){
var es=new EventSource("` + reloadPath + `");
es.addEventListener("reload",function(){location.reload();});
es.addEventListener("notify",function(e){
var el=document.getElementById("__honours_notice");
if(!el){el=document.createElement("div");el.id="__honours_notice";
el.style.cssText="position:fixed;top:0;left:0;right:0;z-index:99999;padding:15px;background:rgba(0,0,0,.85);color:#fff;text-align:center";
document.body.appendChild(el);}
el.innerHTML=e.data;});
})();</script>`

type Server struct {
	cfg   config.Config
	log   *zap.Logger
	steps *build.Steps

	// directories searched in order for each request
	roots []string

	sseMu    sync.Mutex
	sseConns map[chan event]struct{}

	noticeMu          sync.Mutex
	notice            string
	preventNextReload bool

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		log:      log.Named("serve"),
		roots:    []string{cfg.Build.TmpDir, cfg.Build.ClientDir},
		sseConns: make(map[chan event]struct{}),
	}
	s.steps = build.NewSteps(cfg, buildmode.Development, log)
	s.steps.Reporter = s
	return s
}

// Steps exposes the dev-mode build steps, e.g. to swap the fetcher.
func (s *Server) Steps() *build.Steps { return s.steps }

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Prepare fills .tmp: data first, then styles, templates and scripts.
func (s *Server) Prepare(ctx context.Context) error {
	g, err := build.ServeGraph(s.steps)
	if err != nil {
		return err
	}
	return pipeline.Run(ctx, g, s.log)
}

// ListenAndServe runs Prepare, starts watching client and serves until
// ctx is done. Callers do not prepare beforehand.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Prepare(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.startWatch()
	if err != nil {
		return err
	}
	defer s.Close()
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		s.watchLoop(ctx, w)
	}()

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", zap.String("addr", addr))
	err = srv.ListenAndServe()
	cancel()
	<-watchDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(reloadPath, s.handleSSE)
	mux.HandleFunc("/", s.handleStatic)
	return mux
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file, ok := s.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.EqualFold(filepath.Ext(file), ".html") {
		data, err := os.ReadFile(file)
		if err != nil {
			s.log.Error("read page", zap.String("file", file), zap.Error(err))
			http.Error(w, "read page error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		writeHTML(w, InjectReload(data))
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, file)
}

// resolve maps a request path onto the first root that has it. Directories
// resolve to their index.html.
func (s *Server) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	for _, root := range s.roots {
		p := filepath.Join(root, filepath.FromSlash(clean))
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		if st.IsDir() {
			p = filepath.Join(p, "index.html")
			if st, err = os.Stat(p); err != nil || st.IsDir() {
				continue
			}
		}
		return p, true
	}
	return "", false
}

// InjectReload adds the live-reload client just before </body>, or at the
// end when the page has none.
func InjectReload(page []byte) []byte {
	i := lastIndexFold(page, closeBody)
	if i < 0 {
		return append(append([]byte(nil), page...), reloadScript...)
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:i]...)
	out = append(out, reloadScript...)
	return append(out, page[i:]...)
}

var closeBody = []byte("</body>")

// lastIndexFold is bytes.LastIndex with ASCII case folding. Offsets stay
// valid for page, unlike searching a lower-cased copy.
func lastIndexFold(page, sep []byte) int {
	for i := len(page) - len(sep); i >= 0; i-- {
		if bytes.EqualFold(page[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// ServeDist serves a finished build without any dev tooling.
func ServeDist(ctx context.Context, dir, addr string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return fmt.Errorf("serve dist: %s is not a directory", dir)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:    addr,
		Handler: http.FileServer(http.Dir(dir)),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Named("serve").Info("serving dist", zap.String("dir", dir), zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func statDir(p string) (bool, error) {
	st, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return st.IsDir(), nil
}
