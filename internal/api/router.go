package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// RouterOption configures the router.
type RouterOption func(*routerConfig)

type routerConfig struct {
	staticDir string
}

// WithStaticDir serves a built single-page app from dir. Unknown paths
// outside /api fall back to dir/index.html.
func WithStaticDir(dir string) RouterOption {
	return func(c *routerConfig) { c.staticDir = dir }
}

// NewRouter wires the handlers and middleware.
func NewRouter(store domain.CategoryStore, log *logger.Logger, opts ...RouterOption) http.Handler {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	h := NewHandler(store, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(traceMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", h.Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.GetData)
		r.Post("/save", h.Save)
		r.Post("/rename", h.Rename)
	})

	if cfg.staticDir != "" {
		r.NotFound(spaHandler(cfg.staticDir))
	}
	return r
}

// traceMiddleware tags each request with a trace id and logs it.
func traceMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.NewString()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Trace-Id", traceID)

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(contextWithTraceID(r.Context(), traceID)))

			log.Debug("api: %s %s -> %d in %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), traceID)
		})
	}
}

// cors allows any origin; the service is meant for a single user.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// spaHandler serves files from dir and index.html for anything else.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
