package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/jobs"
)

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB   *sqlite.DB
	Jobs *jobs.Service
}

// NewServer creates a new http server.
func NewServer(addr string, db *sqlite.DB, jobsSvc *jobs.Service) *Server {
	s := &Server{
		Addr:   addr,
		router: chi.NewRouter(),
		DB:     db,
		Jobs:   jobsSvc,
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)

	s.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "shipment order generator",
			"endpoints": map[string]string{
				"upload":     "/api/upload-file",
				"job_status": "/api/job/{job_id}",
				"jobs":       "/api/jobs",
				"download":   "/api/download/{file_path}",
				"health":     "/api/health",
			},
		})
	})

	s.router.Get("/api/health", s.HealthHandler)
	s.router.Route("/api", s.Jobs.RegisterRoutes)

	s.server.Handler = s.router
	return s
}

// HealthHandler reports service and database health plus job load.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := s.DB.R.PingContext(ctx); err != nil {
		slog.Error("health db ping", slog.Any("err", err))
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	_, total := s.Jobs.Store.List(0)
	writeJSON(w, status, map[string]any{
		"status":      dbStatus,
		"database":    dbStatus,
		"active_jobs": s.Jobs.Store.Active(),
		"total_jobs":  total,
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding", slog.Any("err", err))
	}
}
