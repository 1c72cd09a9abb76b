package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/mux"

	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/evidence"
	"github.com/claimsat/internal/jobs"
	"github.com/claimsat/internal/metrics"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
	"github.com/claimsat/internal/web/handlers"
	"github.com/claimsat/internal/web/middleware"
)

// Dependencies are the services the server routes to
type Dependencies struct {
	Claims    *service.ClaimService
	Reunify   *service.ReunifyService
	Registry  disaster.Registry
	Ingestor  *evidence.Ingestor
	Metrics   *metrics.Metrics
	Scheduler *jobs.Scheduler
	// Clock drives time-dependent lookups; the system clock when nil
	Clock models.Clock
	// Closer releases the record store on shutdown; may be nil
	Closer io.Closer
}

// Server represents the web server
type Server struct {
	config     *Config
	deps       Dependencies
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
}

// NewServer creates a new web server instance
func NewServer(config *Config, deps Dependencies) (*Server, error) {
	if deps.Claims == nil || deps.Reunify == nil || deps.Registry == nil {
		return nil, fmt.Errorf("claims, reunify and registry dependencies are required")
	}
	if deps.Ingestor == nil {
		deps.Ingestor = evidence.NewIngestor(evidence.NewHeuristicAnalyzer(nil), nil)
	}

	server := &Server{
		config: config,
		deps:   deps,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.ReviewEnabled = s.config.Features.ReviewEnabled
	handlerConfig.Features.BatchTriggerEnabled = s.config.Features.BatchTriggerEnabled
	handlerConfig.Features.ExportEnabled = s.config.Features.ExportEnabled

	apiHandler := &handlers.APIHandler{Claims: s.deps.Claims, Reunify: s.deps.Reunify, Started: time.Now()}
	claimsHandler := &handlers.ClaimsHandler{Claims: s.deps.Claims, Ingestor: s.deps.Ingestor, Config: handlerConfig}
	exportHandler := &handlers.ExportHandler{Claims: s.deps.Claims, Config: handlerConfig}
	mapsHandler := &handlers.MapsHandler{Registry: s.deps.Registry, Claims: s.deps.Claims}
	disastersHandler := &handlers.DisastersHandler{Registry: s.deps.Registry, Clock: s.deps.Clock}
	searchHandler := &handlers.SearchHandler{Reunify: s.deps.Reunify}
	reunifyHandler := &handlers.ReunifyHandler{Reunify: s.deps.Reunify, Config: handlerConfig}
	if s.deps.Scheduler != nil {
		reunifyHandler.Batch = s.deps.Scheduler
	}

	s.router.HandleFunc("/health", apiHandler.Health).Methods("GET")
	if s.deps.Metrics != nil {
		s.router.Handle("/metrics", s.deps.Metrics.Handler()).Methods("GET")
	}

	// Reviewer and authority routes sit on their own subrouter so they can
	// require an API key. It is registered first so /claims/export is not
	// taken for a claim ID.
	protected := s.router.PathPrefix("/api").Subrouter()
	api := s.router.PathPrefix("/api").Subrouter()

	// Claims
	api.HandleFunc("/claims", claimsHandler.ListClaims).Methods("GET")
	api.HandleFunc("/claims", claimsHandler.CreateClaim).Methods("POST")
	api.HandleFunc("/claims/score", claimsHandler.ScoreClaim).Methods("POST")
	api.HandleFunc("/claims/geojson", mapsHandler.ClaimsGeoJSON).Methods("GET")
	if s.config.Features.ExportEnabled {
		protected.HandleFunc("/claims/export", exportHandler.ExportClaims).Methods("GET")
	}
	api.HandleFunc("/claims/{id}", claimsHandler.GetClaim).Methods("GET")
	api.HandleFunc("/claims/{id}/events", claimsHandler.GetEvents).Methods("GET")
	if s.config.Features.ReviewEnabled {
		protected.HandleFunc("/claims/{id}/review", claimsHandler.ReviewClaim).Methods("POST")
	}

	// Reunification
	api.HandleFunc("/reunify/missing-persons", reunifyHandler.RegisterMissing).Methods("POST")
	api.HandleFunc("/reunify/missing-persons", reunifyHandler.ListMissing).Methods("GET")
	api.HandleFunc("/reunify/missing-persons/{id}/matches", reunifyHandler.MatchesForMissing).Methods("GET")
	api.HandleFunc("/reunify/survivors", reunifyHandler.RegisterSurvivor).Methods("POST")
	api.HandleFunc("/reunify/survivors", reunifyHandler.ListSurvivors).Methods("GET")
	api.HandleFunc("/reunify/survivors/{id}/matches", reunifyHandler.MatchesForSurvivor).Methods("GET")
	api.HandleFunc("/reunify/search", searchHandler.SearchPeople).Methods("GET")
	api.HandleFunc("/reunify/matches", reunifyHandler.ListMatches).Methods("GET")
	protected.HandleFunc("/reunify/matches/{id}/verify", reunifyHandler.VerifyMatch).Methods("POST")
	if s.config.Features.BatchTriggerEnabled {
		protected.HandleFunc("/reunify/matches/run", reunifyHandler.RunBatch).Methods("POST")
	}

	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")

	// Disasters
	api.HandleFunc("/disasters", disastersHandler.ListDisasters).Methods("GET")
	api.HandleFunc("/disasters/geojson", mapsHandler.DisastersGeoJSON).Methods("GET")
	api.HandleFunc("/disasters/context", disastersHandler.DisasterContext).Methods("GET")
	api.HandleFunc("/disasters/{id}", disastersHandler.GetDisaster).Methods("GET")

	if s.config.Auth.Enabled {
		protected.Use(middleware.Authentication(s.config.Auth.APIKey))
	}

	// CORS and logging wrap the router so preflights and unmatched routes pass through them too
	s.handler = middleware.RequestLogging()(middleware.CORS(s.config.CORS.AllowedOrigins)(s.router))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("Starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Start()
	}

	select {
	case <-stop:
		log.Info("Shutting down server...")
	case err := <-errCh:
		s.shutdownBackground()
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests, waits for in-flight work and releases the store
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
	s.shutdownBackground()

	log.Info("Server stopped")
	return nil
}

func (s *Server) shutdownBackground() {
	if s.deps.Scheduler != nil {
		<-s.deps.Scheduler.Stop().Done()
	}
	if s.deps.Closer != nil {
		if err := s.deps.Closer.Close(); err != nil {
			log.WithError(err).Error("Store close error")
		}
	}
}
