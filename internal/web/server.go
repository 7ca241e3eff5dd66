package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/emotion"
	"github.com/kozaktomas/carecam/internal/web/handlers"
	"github.com/kozaktomas/carecam/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	session    handlers.FrameSession
	catalog    *emotion.Catalog
	log        logrus.FieldLogger
}

// NewServer creates a new web server around one camera session
func NewServer(cfg *config.Config, session handlers.FrameSession, catalog *emotion.Catalog, log logrus.FieldLogger) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:  cfg,
		router:  r,
		session: session,
		catalog: catalog,
		log:     log,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:        cfg.Web.Addr(),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the MJPEG stream runs until the client disconnects.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("starting web server")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains requests and releases the camera. Open streams are ended first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down web server")

	// Streams never finish on their own; stopping the session ends them so
	// the drain below can complete.
	s.releaseCamera()
	err := s.httpServer.Shutdown(ctx)
	// A request drained above may have reopened the camera.
	s.releaseCamera()

	if err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) releaseCamera() {
	if err := s.session.Stop(); err != nil {
		s.log.WithError(err).Error("failed to release camera")
	}
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
