// Package server exposes rendered tables over HTTP. Every request reloads the
// configured sources, so refreshed results files show up without a restart.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/logging"
	"github.com/KaramelBytes/statdeck/internal/render"
)

type server struct {
	projector *dataset.Projector
	title     string
}

// New builds the HTTP handler.
func New(p *dataset.Projector, title string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{projector: p, title: title}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogger(logger))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", handleHealth)
	r.Route("/api/tables", func(r chi.Router) {
		r.Get("/", s.handleTables)
		r.Get("/{key}", s.handleTable)
	})

	return gzhttp.GzipHandler(r)
}

func withLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Info("http_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000))
	})
}

func (s *server) projectorFor(r *http.Request) *dataset.Projector {
	return s.projector.WithLogger(logging.FromContext(r.Context()))
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := render.Page{Title: s.title, Tables: s.projectorFor(r).LoadAll()}
	var buf bytes.Buffer
	if err := render.HTML(&buf, page); err != nil {
		logging.FromContext(r.Context()).Error("render page", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleTables(w http.ResponseWriter, r *http.Request) {
	page := render.Page{Title: s.title, Tables: s.projectorFor(r).LoadAll()}
	writeJSON(w, r, http.StatusOK, render.NewExport(page))
}

func (s *server) handleTable(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	t, ok := s.projectorFor(r).LoadTable(key)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "unknown table: " + key})
		return
	}
	writeJSON(w, r, http.StatusOK, render.NewExportTable(t))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(r.Context()).Error("encode response", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
