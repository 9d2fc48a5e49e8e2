package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/stream"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pluginTimeout bounds how long a request waits on the plugin.
const pluginTimeout = 2 * time.Second

// PluginQuerier answers one-shot plugin queries.
type PluginQuerier interface {
	CheckStatus() *stream.Observable[domain.ServiceStatus]
	GetCurrentLocation(options *domain.LocationOptions) *stream.Observable[domain.Location]
}

// Server exposes health, readiness, metrics, and plugin query endpoints.
type Server struct {
	httpServer *http.Server
	plugin     PluginQuerier
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /status,
// and /location routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, plugin PluginQuerier, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		plugin: plugin,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /location", s.handleLocation)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pluginTimeout)
	defer cancel()

	status, err := stream.First(ctx, s.plugin.CheckStatus())
	if err != nil {
		s.logger.Warn("check status failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isRunning":               status.IsRunning,
		"locationServicesEnabled": status.LocationServicesEnabled,
		"authorization":           status.Authorization.String(),
	})
}

// handleLocation serves the current fix. The optional maximumAge and timeout
// query parameters are milliseconds and are passed through to the plugin.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	options, err := locationOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pluginTimeout)
	defer cancel()

	loc, err := stream.First(ctx, s.plugin.GetCurrentLocation(options))
	if err != nil {
		var locErr *domain.LocationError
		if errors.As(err, &locErr) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error": locErr.Message,
				"code":  locErr.Code.String(),
			})
			return
		}
		s.logger.Warn("get current location failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func locationOptions(r *http.Request) (*domain.LocationOptions, error) {
	q := r.URL.Query()
	if !q.Has("maximumAge") && !q.Has("timeout") {
		return nil, nil
	}
	var options domain.LocationOptions
	for name, dst := range map[string]**int{"maximumAge": &options.MaximumAge, "timeout": &options.Timeout} {
		if !q.Has(name) {
			continue
		}
		v, err := strconv.Atoi(q.Get(name))
		if err != nil || v < 0 {
			return nil, errors.New("invalid " + name + ": must be a non-negative integer")
		}
		*dst = domain.Ptr(v)
	}
	return &options, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
