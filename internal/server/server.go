// internal/server/server.go
// Package server exposes the admin console over HTTP: JSON view endpoints
// backed by the list services, decision action routes, session handling and
// the operational surface (healthz, metrics).
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"homecare-admin/internal/api"
	"homecare-admin/internal/common/config"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/lists"
	"homecare-admin/internal/session"
)

// Server wires the console routes onto the list services.
type Server struct {
	router   chi.Router
	apps     *lists.Service
	requests *lists.Service
	cancels  *lists.Service
	appsSrc  *lists.ApplicationsSource
	reqsSrc  *lists.RequestsSource
	backend  *api.Client
	sessions *session.Store
	cfg      config.Config
	log      logger.Logger
}

type Deps struct {
	Applications    *lists.Service
	ServiceRequests *lists.Service
	Cancellations   *lists.Service
	AppsSource      *lists.ApplicationsSource
	RequestsSource  *lists.RequestsSource
	Backend         *api.Client
	Sessions        *session.Store
}

func New(cfg config.Config, deps Deps, log logger.Logger) *Server {
	s := &Server{
		apps:     deps.Applications,
		requests: deps.ServiceRequests,
		cancels:  deps.Cancellations,
		appsSrc:  deps.AppsSource,
		reqsSrc:  deps.RequestsSource,
		backend:  deps.Backend,
		sessions: deps.Sessions,
		cfg:      cfg,
		log:      log,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/views", func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/applications", s.handleView(s.apps))
		r.Post("/applications/search", s.handleSearch(s.apps))
		r.Post("/applications/sort", s.handleSort(s.apps))
		r.Post("/applications/{id}/approve", s.handleApprove(s.apps))
		r.Post("/applications/{id}/decline", s.handleDecline(s.apps))
		r.Get("/applications/groups/{groupID}/documents", s.handleDocuments)
		r.Get("/applications/groups/{groupID}/documents/{kind}", s.handleDocumentKind)

		r.Get("/servicerequests", s.handleView(s.requests))
		r.Post("/servicerequests/search", s.handleSearch(s.requests))
		r.Post("/servicerequests/sort", s.handleSort(s.requests))
		r.Post("/servicerequests/{id}/approve", s.handleApprove(s.requests))
		r.Post("/servicerequests/{id}/decline", s.handleDecline(s.requests))
		r.Get("/servicerequests/groups/{groupID}", s.handleRequestDetail)

		r.Get("/cancellations", s.handleView(s.cancels))
		r.Post("/cancellations/search", s.handleSearch(s.cancels))
		r.Post("/cancellations/sort", s.handleSort(s.cancels))
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer builds the configured http.Server so the caller can own its
// shutdown.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(started).String(),
		})
	})
}
