package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/web/handlers"
	"github.com/eduvance/portal/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	port           int
	bind           string
	allowedNet     *net.IPNet
	requestTimeout time.Duration
	router         *chi.Mux
	handlers       *handlers.Handlers
}

// NewServer creates a new web server
func NewServer(h *handlers.Handlers, port int, bind string, allowedNet *net.IPNet, requestTimeout time.Duration) *Server {
	s := &Server{
		port:           port,
		bind:           bind,
		allowedNet:     allowedNet,
		requestTimeout: requestTimeout,
		router:         chi.NewRouter(),
		handlers:       h,
	}

	s.setupRoutes()

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.requestTimeout))

		r.Get("/sitemap.xml", h.Sitemap)

		r.Route("/api", func(r chi.Router) {
			r.Route("/mysql", func(r chi.Router) {
				r.Get("/subject", h.GetSubject)
				r.Get("/subjects", h.ListSubjects)
				r.Get("/subjects_full", h.ListSubjectsFull)
				r.Post("/subjects_add", h.AddSubject)

				r.Get("/papers", h.ListPapers)
				r.Post("/papers_insert", h.InsertPaper)
				r.Get("/exam_sessions", h.ListExamSessions)

				r.Get("/resources", h.ListResources)
				r.Patch("/resources", h.UpdateResourceVotes)
				r.Post("/resources_insert", h.InsertResource)
				r.Post("/community_resource_requests", h.InsertCommunityRequest)
			})

			r.Get("/past-papers", h.PastPapers)
			r.Get("/subjectList", h.SubjectList)
			r.Get("/members", h.Members)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
	})
}

// Start starts the web server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
		// ReadTimeout is for reading request body
		ReadTimeout: 15 * time.Second,
		// Writes are bounded by the per-group chi timeout
		WriteTimeout: 0,
		// IdleTimeout for keep-alive connections between requests
		IdleTimeout: 120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
