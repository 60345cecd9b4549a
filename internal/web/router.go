package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/lostfound/internal/service"
	webembed "github.com/erazemk/lostfound/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	Service   *service.Service
	Templates *Templates
	Logger    *slog.Logger
	// MaxUploadBytes limits form bodies; zero means 10 MiB.
	MaxUploadBytes int64
}

// NewServer parses the page templates and returns a page server.
func NewServer(svc *service.Service, logger *slog.Logger, maxUploadBytes int64) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")

	templates, err := LoadTemplates(logger)
	if err != nil {
		return nil, err
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Server{Service: svc, Templates: templates, Logger: logger, MaxUploadBytes: maxUploadBytes}, nil
}

// Routes registers the page routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	r.Get("/", s.IndexPage)
	r.Post("/report", s.ReportSubmit)
	r.Post("/found", s.FoundSubmit)
}
