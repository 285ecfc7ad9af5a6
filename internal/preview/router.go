// Package preview serves a built site locally with live reload.
package preview

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/quire/internal/sse"
)

// EventsPath is where the live reload stream is mounted.
const EventsPath = "/api/events"

// Status remembers the outcome of the latest build.
type Status struct {
	mu   sync.RWMutex
	last *sse.BuildResult
}

// Set records res as the latest build outcome.
func (s *Status) Set(res sse.BuildResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &res
}

// Get returns the latest build outcome, if any.
func (s *Status) Get() (sse.BuildResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return sse.BuildResult{}, false
	}
	return *s.last, true
}

// NewRouter serves outputDir with clean URLs. events, if non-nil, is mounted
// at EventsPath. status backs GET /api/status and the readiness probe.
func NewRouter(outputDir string, events http.Handler, status *Status) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if res, ok := status.Get(); !ok || res.Error != "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "building"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		res, ok := status.Get()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no build yet"})
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
	if events != nil {
		r.Get(EventsPath, events.ServeHTTP)
	}

	r.Get("/*", staticHandler(outputDir))
	r.Head("/*", staticHandler(outputDir))
	return r
}
