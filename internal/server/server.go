// Package server is the HTTP layer: three content routes, two monitoring
// routes, no state of its own. Every request builds fresh data; nothing is
// shared between requests except the metrics counters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ainews/internal/config"
	"ainews/internal/digest"
	"ainews/internal/feed"
	"ainews/internal/logger"
	"ainews/internal/metrics"
)

// NewsFetcher is what the dispatcher needs from the feed layer.
type NewsFetcher interface {
	Fetch(ctx context.Context) ([]digest.NewsItem, error)
}

type Server struct {
	chi.Router

	cfg     *config.Config
	fetcher NewsFetcher
}

func New(cfg *config.Config, fetcher NewsFetcher) *Server {
	s := &Server{
		Router:  chi.NewRouter(),
		cfg:     cfg,
		fetcher: fetcher,
	}

	// Recoverer turns panics into 500s. Panics must never reach the
	// fallback path; only feed failures do.
	s.Use(middleware.Recoverer)

	s.Get("/", s.handleIndex)
	s.Get("/static/styles.css", s.handleStyles)
	s.Get("/api/news", s.handleNews)
	s.Get("/healthz", s.handleHealth)
	s.Get("/metrics", s.handleMetrics)

	return s
}

// handleNews runs the fetch→summarize pipeline. It always answers 200: when
// the feed is unreachable the client gets the fallback digest, not an error.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	metrics.Global.IncrementRequestsServed()

	items, err := s.fetcher.Fetch(r.Context())
	var summary string
	if err != nil {
		var fe *feed.FetchError
		if errors.As(err, &fe) {
			logger.Warn("feed unavailable, serving fallback", "kind", fe.Kind.String(), "error", fe.Err)
		} else {
			logger.Error("unexpected fetch error, serving fallback", "error", err)
		}
		metrics.Global.RecordFetchFailure(err.Error())
		items = digest.Fallback(time.Now())
		summary = digest.FallbackSummary
	} else {
		metrics.Global.RecordFetchSuccess(len(items))
		summary = digest.BuildSummary(items)
	}

	if items == nil {
		items = []digest.NewsItem{}
	}

	s.writeJSON(w, http.StatusOK, digest.Digest{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     summary,
		Items:       items,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, filepath.Join(s.cfg.TemplatesDir, "index.html"), "text/html; charset=utf-8")
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, filepath.Join(s.cfg.StaticDir, "styles.css"), "text/css; charset=utf-8")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_fetch": stats["last_fetch_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func (s *Server) serveFile(w http.ResponseWriter, path, contentType string) {
	content, err := os.ReadFile(path)
	if err != nil {
		// No recovery path for missing assets; surface a server error.
		logger.Error("static asset read failed", "path", path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(content)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
