// Package server is the local execution environment for a function: it
// listens for HTTP requests, hands every one of them to the function, and
// transmits the response.
package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"edgefn/internal/config"
	"edgefn/pkg/handler"
	"edgefn/pkg/logger"
)

type Server struct {
	cfg    *config.Config
	router *mux.Router
	server *http.Server
}

// New builds a server that routes every method and path to the given
// function, plus a health endpoint for the environment itself.
func New(cfg *config.Config, h handler.Handler) *Server {
	router := mux.NewRouter()

	s := &Server{
		cfg:    cfg,
		router: router,
	}

	router.Use(s.requestID)
	router.HandleFunc("/healthz", handler.HandleHealth).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(handler.HTTP(h))

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	logger.Get().Info("Starting edgefn dev server", zap.String("address", s.cfg.Addr()))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Get().Info("Shutting down edgefn dev server")
	return s.server.Shutdown(ctx)
}

// requestID tags every request with an ID and a request-scoped logger.
// The ID is reused from X-Request-Id when the caller supplies one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
			r.Header.Set("X-Request-Id", id)
		}
		w.Header().Set("X-Request-Id", id)

		l := logger.Get().With(zap.String("request_id", id))
		l.Debug("Request received",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))

		next.ServeHTTP(w, r.WithContext(logger.WithCtx(r.Context(), l)))
	})
}
