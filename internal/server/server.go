// Package server exposes decoded game assets over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/leodutra/bevy-city/internal/assets"
)

// Server serves archive listings, raw assets, and decoded placement
// lists and models.
type Server struct {
	assets *assets.Manager
	log    *zap.Logger
	http   *http.Server
}

// New creates a server around a mounted asset manager.
func New(addr string, manager *assets.Manager, log *zap.Logger) *Server {
	s := &Server{
		assets: manager,
		log:    log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/files", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/files/{path:.+}", s.handleFile).Methods(http.MethodGet)
	r.HandleFunc("/api/ipl/{path:.+}", s.handleIPL).Methods(http.MethodGet)
	r.HandleFunc("/api/dff/{name}", s.handleDFF).Methods(http.MethodGet)
	r.HandleFunc("/api/gltf/{name}", s.handleGLTF).Methods(http.MethodGet)

	h := handlers.RecoveryHandler()(r)
	h = handlers.CombinedLoggingHandler(&logWriter{log: log}, h)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting asset server", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// logWriter adapts zap to the access-log writer gorilla/handlers wants.
type logWriter struct {
	log *zap.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	// Access log lines arrive newline-terminated.
	line := string(p)
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	w.log.Info(line)
	return len(p), nil
}
