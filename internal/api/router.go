package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/media"
	"github.com/erazemk/lostfound/internal/service"
)

// Options configure the router. Zero values disable the optional parts.
type Options struct {
	Logger         *slog.Logger
	MaxUploadBytes int64
	CORSOrigins    []string
	// StaticDir is served for paths no route matches, if it exists.
	StaticDir string
	// Media serves locally stored photos under media.PathPrefix.
	Media http.Handler
	// Pages registers the browser pages.
	Pages func(chi.Router)
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	items := &ItemsHandler{Service: svc, MaxUploadBytes: opts.MaxUploadBytes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(CORS(opts.CORSOrigins))

	r.Post("/upload", items.Upload)
	r.Get("/items", items.List)
	r.Post("/items/{id}/verify", items.Verify)
	r.Post("/found-report", items.FoundReport)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if opts.Media != nil {
		r.Handle(media.PathPrefix+"*", opts.Media)
	}
	if opts.Pages != nil {
		opts.Pages(r)
	}

	if info, err := os.Stat(opts.StaticDir); opts.StaticDir != "" && err == nil && info.IsDir() {
		r.NotFound(http.FileServer(http.Dir(opts.StaticDir)).ServeHTTP)
	} else {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, http.StatusNotFound, "not found")
		})
	}

	return r
}
