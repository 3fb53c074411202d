package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"diy-research-agent/internal/config"
	"diy-research-agent/internal/usecase"
)

// Server is the HTTP front door: request decoding and routing only; the
// pipeline semantics live in the usecase layer.
type Server struct {
	cfg        *config.Config
	researchUC usecase.ResearchUseCase
	log        *zerolog.Logger
	server     *http.Server
}

func NewServer(cfg *config.Config, researchUC usecase.ResearchUseCase, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		researchUC: researchUC,
		log:        logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/start_research", startResearchHandler(s.researchUC, s.log))
	r.Get("/status/{jobID}", statusHandler(s.researchUC))
	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
