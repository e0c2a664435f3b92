package serve

import (
	"context"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Change kinds, in the order a batch of changes is handled.
type Change int

const (
	ChangeNone Change = iota
	ChangeStyles
	ChangeImages
	ChangeTemplates
	ChangeScripts
)

func (c Change) String() string {
	switch c {
	case ChangeStyles:
		return "styles"
	case ChangeImages:
		return "images"
	case ChangeTemplates:
		return "templates"
	case ChangeScripts:
		return "scripts"
	default:
		return "none"
	}
}

// Classify decides what a changed client file needs.
func (s *Server) Classify(file string) Change {
	if samePath(file, s.cfg.Build.DataFile) {
		return ChangeTemplates
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".css", ".scss":
		return ChangeStyles
	case ".png", ".jpg", ".jpeg", ".gif", ".svg":
		return ChangeImages
	case ".tmpl":
		return ChangeTemplates
	case ".js":
		return ChangeScripts
	default:
		return ChangeNone
	}
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

func (s *Server) startWatch() (*fsnotify.Watcher, error) {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		err = filepath.WalkDir(s.cfg.Build.ClientDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return s.watcher, err
}

// Watch watches the client dir and rebuilds on change until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	w, err := s.startWatch()
	if err != nil {
		return err
	}
	s.watchLoop(ctx, w)
	return s.Close()
}

func (s *Server) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	s.log.Info("watching for file changes", zap.String("dir", s.cfg.Build.ClientDir))

	delay := s.cfg.Serve.Debounce
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	pending := make(map[Change]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				// new directories need their own watch
				if fi, err := statDir(ev.Name); err == nil && fi {
					_ = w.Add(ev.Name)
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if c := s.Classify(ev.Name); c != ChangeNone {
				pending[c] = struct{}{}
				debounce.Reset(delay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			changes := make([]Change, 0, len(pending))
			for c := range pending {
				changes = append(changes, c)
			}
			clear(pending)
			sort.Slice(changes, func(i, j int) bool { return changes[i] < changes[j] })
			s.apply(ctx, changes)
		}
	}
}

// apply runs the step each change needs, then reloads once.
func (s *Server) apply(ctx context.Context, changes []Change) {
	for _, c := range changes {
		var err error
		switch c {
		case ChangeStyles:
			err = s.steps.Styles(ctx)
		case ChangeTemplates:
			err = s.steps.Templates(ctx)
		case ChangeScripts:
			err = s.steps.Scripts(ctx)
		}
		if err != nil {
			// only cancellation gets here; step errors are reported in-page
			s.log.Debug("rebuild stopped", zap.Stringer("change", c), zap.Error(err))
			return
		}
		s.log.Info("rebuilt", zap.Stringer("change", c))
	}
	s.reload()
}
