// Package api provides the HTTP REST API for the Lien Portal service.
//
// It exposes authentication endpoints backed by the session manager
// and county/municipality browsing backed by the upstream GovMetric
// API with a SQLite cache fallback.
//
// The server follows the same lifecycle pattern as other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/munisearch/lienportal-core/internal/govmetric"
	"github.com/munisearch/lienportal-core/internal/infrastructure/config"
	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
	"github.com/munisearch/lienportal-core/internal/place"
	"github.com/munisearch/lienportal-core/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// PlacesFetcher fetches the raw place list from the upstream.
// Satisfied by *govmetric.Client.
type PlacesFetcher interface {
	GetPlaces(ctx context.Context) ([]govmetric.Place, error)
}

// Recorder receives usage metrics. Optional: a nil Recorder disables
// recording without conditionals at every call site returning errors.
type Recorder interface {
	RecordLogin(success bool)
	RecordCountyRequest(source string)
	RecordUpstreamLatency(endpoint string, d time.Duration)
}

// HealthChecker is anything whose liveness the health endpoint reports.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.ServerConfig
	Logger      *logging.Logger
	Sessions    *session.Manager
	Upstream    PlacesFetcher
	Transformer *place.Transformer
	Cache       place.Repository
	Database    HealthChecker
	Metrics     Recorder // optional
	Version     string
}

// Server is the HTTP API server for the Lien Portal.
type Server struct {
	cfg         config.ServerConfig
	logger      *logging.Logger
	sessions    *session.Manager
	upstream    PlacesFetcher
	transformer *place.Transformer
	cache       place.Repository
	database    HealthChecker
	metrics     Recorder
	version     string

	server *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Upstream == nil {
		return nil, fmt.Errorf("upstream client is required")
	}
	if deps.Transformer == nil {
		return nil, fmt.Errorf("place transformer is required")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("place cache is required")
	}

	return &Server{
		cfg:         deps.Config,
		logger:      deps.Logger.With("component", "api"),
		sessions:    deps.Sessions,
		upstream:    deps.Upstream,
		transformer: deps.Transformer,
		cache:       deps.Cache,
		database:    deps.Database,
		metrics:     deps.Metrics,
		version:     deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
