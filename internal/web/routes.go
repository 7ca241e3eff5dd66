package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/carecam/internal/web/handlers"
	"github.com/kozaktomas/carecam/internal/web/static"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config, s.catalog)
	cameraHandler := handlers.NewCameraHandler(s.session, s.log)
	snapshotsHandler := handlers.NewSnapshotsHandler(s.catalog, s.log)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// The stream is long-lived and must not inherit the request timeout.
		r.Get("/camera/stream", cameraHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(time.Minute))

			r.Get("/config", configHandler.Get)

			r.Get("/camera/frame", cameraHandler.Frame)
			r.Get("/camera/status", cameraHandler.Status)
			r.Post("/camera/stop", cameraHandler.Stop)

			r.Get("/snapshots", snapshotsHandler.List)
			r.Get("/snapshots/stats", snapshotsHandler.Stats)
			r.Get("/snapshots/{id}", snapshotsHandler.Get)
			r.Get("/snapshots/{id}/image", snapshotsHandler.Image)
		})
	})

	s.router.Get("/*", s.serveStatic)
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".png":  "image/png",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
}

// serveStatic serves the embedded monitor page and its assets.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if !static.HasDist() {
		http.NotFound(w, r)
		return
	}

	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := static.GetFileSystem().Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	if i := strings.LastIndex(path, "."); i >= 0 {
		if ct, ok := contentTypes[path[i:]]; ok {
			contentType = ct
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
