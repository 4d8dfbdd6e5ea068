// Package api exposes the normalization core, and optionally a live
// scraper, over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
	"github.com/sells-group/fightstats/internal/pipeline"
)

// Source is the live scraping backend behind the /v1/events routes.
type Source interface {
	Events(ctx context.Context, start string) (*model.WalkResult, error)
	EventFights(ctx context.Context, eventURL string) (*model.EventCard, []pipeline.FightResult, error)
}

// Server routes API requests.
type Server struct {
	router    *chi.Mux
	assembler *normalize.Assembler
	pair      normalize.PairOptions
	source    Source
}

// NewServer creates a Server. source may be nil, in which case the live
// routes answer 503.
func NewServer(asm *normalize.Assembler, pair normalize.PairOptions, source Source) *Server {
	if asm == nil {
		asm = normalize.NewAssembler()
	}
	s := &Server{
		router:    chi.NewRouter(),
		assembler: asm,
		pair:      pair,
		source:    source,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/blocks", s.handleBlock)
		r.Post("/rows", s.handleRow)
		r.Post("/stats", s.handleStat)
		r.Post("/fights/assemble", s.handleAssemble)
		r.Get("/events", s.handleEvents)
		r.Get("/events/card", s.handleCard)
	})
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
