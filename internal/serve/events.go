package serve

import (
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"net/http"
	"strings"
)

const (
	eventReload = "reload"
	eventNotify = "notify"
)

type event struct {
	name string
	data string
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.subscribe()
	defer cancel()

	writeEvent(w, event{name: "hello"})
	// a page loaded while an error is showing gets the error too
	if notice := s.currentNotice(); notice != "" {
		writeEvent(w, event{name: eventNotify, data: notice})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev event) {
	fmt.Fprintf(w, "event: %s\n", ev.name)
	for _, line := range strings.Split(ev.data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

func (s *Server) subscribe() (<-chan event, func()) {
	ch := make(chan event, 8)
	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	return ch, func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		close(ch)
		s.sseMu.Unlock()
	}
}

func (s *Server) broadcast(ev event) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ReportBuildError shows a failed step in every open page and keeps the
// next reload from wiping it away.
func (s *Server) ReportBuildError(headline string, err error) {
	report := `<span style="color:red;font-weight:bold;font:bold 20px sans-serif">` + html.EscapeString(headline) + `</span>`
	if err != nil {
		report += `<pre style="text-align:left;max-width:800px">` + html.EscapeString(err.Error()) + `</pre>`
	}

	s.noticeMu.Lock()
	s.notice = report
	s.preventNextReload = true
	s.noticeMu.Unlock()

	s.log.Warn("build error shown in browser", zap.String("headline", headline))
	s.broadcast(event{name: eventNotify, data: report})
}

// reload tells every page to reload, unless an error was just reported.
func (s *Server) reload() {
	s.noticeMu.Lock()
	if s.preventNextReload {
		s.preventNextReload = false
		s.noticeMu.Unlock()
		return
	}
	s.notice = ""
	s.noticeMu.Unlock()

	s.broadcast(event{name: eventReload})
}

func (s *Server) currentNotice() string {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	return s.notice
}
