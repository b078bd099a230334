package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/history"
	"gitlab.com/develevate.net/internal/core/services/presenter"
	"gitlab.com/develevate.net/internal/handlers"
	historyhandler "gitlab.com/develevate.net/internal/handlers/history"
	"gitlab.com/develevate.net/internal/handlers/runs"
)

type ServiceProvider struct {
	sessionService presenter.IRunSessionService
	historyService history.IHistoryService
	tokenVerifier  primary.TokenVerifier
}

func NewServiceProvider(
	sessionService presenter.IRunSessionService,
	historyService history.IHistoryService,
	tokenVerifier primary.TokenVerifier,
) *ServiceProvider {
	return &ServiceProvider{
		sessionService: sessionService,
		historyService: historyService,
		tokenVerifier:  tokenVerifier,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider.sessionService == nil || s.ServiceProvider.tokenVerifier == nil {
		return errors.New("http server: missing service dependencies")
	}

	r := mux.NewRouter()
	handlers.RegisterHealth(r, s.ServiceName)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(handlers.New(s.ServiceProvider.tokenVerifier, s.logger).JWTMiddleware)
	runs.NewRunHandler(s.ServiceProvider.sessionService, s.logger).RegisterRoutes(api)
	if s.ServiceProvider.historyService != nil {
		historyhandler.NewHistoryHandler(s.ServiceProvider.historyService, s.logger).RegisterRoutes(api)
	}

	s.router = r
	return nil
}

// Handler returns the routed handler, valid after Init
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
