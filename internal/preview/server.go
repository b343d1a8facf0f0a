// Package preview serves the generated data files and the static site for
// local review before a run is published.
package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/skatemap/skatemap-data/internal/config"
	"github.com/skatemap/skatemap-data/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(cfg *config.Config, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(timingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	h := &handlers{cfg: cfg, logger: logger}

	// --- Routes ---

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.health)
		r.Get("/data", h.healthData)
	})

	// Generated output. Served uncached so a fresh run shows up on reload.
	r.Route("/data", func(r chi.Router) {
		r.Use(noCache)
		r.Handle("/*", http.StripPrefix("/data", http.FileServer(http.Dir(cfg.DataDir))))
	})

	// Static site
	r.Handle("/*", http.FileServer(http.Dir(cfg.SiteDir)))

	return r
}

// handlers holds shared dependencies for the preview endpoints.
type handlers struct {
	cfg    *config.Config
	logger *slog.Logger
}

// health returns basic health status.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// healthData verifies the published dataset is present and parseable.
func (h *handlers) healthData(w http.ResponseWriter, r *http.Request) {
	ds, err := store.ReadDataset(filepath.Join(h.cfg.DataDir, store.DatasetFile))
	if err != nil {
		h.logger.Warn("Dataset health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"dataset":   "unreadable",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"dataset":     store.DatasetFile,
		"shops":       ds.Stats.Total,
		"lastUpdated": ds.LastUpdated,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON marshals a Go value to JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
