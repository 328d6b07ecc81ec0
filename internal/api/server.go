package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ZacxDev/video-editor/pkg/videoeditor"
	"go.uber.org/zap"
)

type Server struct {
	httpServer *http.Server
	store      *Store
	logger     *zap.Logger
}

type ServerConfig struct {
	Port      int
	Store     *Store
	NewEditor func() (*videoeditor.Editor, error)
	Logger    *zap.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 5 * time.Minute, // uploads
			// Exports answer when the render finishes.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		store:  cfg.Store,
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	s.store.Close()
	return err
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
