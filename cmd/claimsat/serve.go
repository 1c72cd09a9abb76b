package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/claimsat/internal/claim"
	"github.com/claimsat/internal/evidence"
	"github.com/claimsat/internal/jobs"
	"github.com/claimsat/internal/metrics"
	"github.com/claimsat/internal/reunify"
	"github.com/claimsat/internal/service"
	"github.com/claimsat/internal/store"
	"github.com/claimsat/internal/web"
)

// createServeCmd starts the HTTP API
func createServeCmd(opts *rootOptions) *cobra.Command {
	var webConfigPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			webCfg := web.DefaultConfig()
			if webConfigPath != "" {
				loaded, err := web.LoadConfig(webConfigPath)
				if err != nil {
					return fmt.Errorf("failed to load web config: %w", err)
				}
				webCfg = loaded
			}
			if port > 0 {
				webCfg.Server.Port = port
			}

			// flags win over the web config's engine paths
			if opts.configPath == "" {
				opts.configPath = webCfg.Engine.ConfigPath
			}
			if opts.disastersPath == "" {
				opts.disastersPath = webCfg.Engine.DisastersPath
			}

			deps, err := buildDependencies(runContext(cmd), opts, webCfg)
			if err != nil {
				return err
			}

			server, err := web.NewServer(webCfg, deps)
			if err != nil {
				if deps.Closer != nil {
					deps.Closer.Close()
				}
				return err
			}
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&webConfigPath, "web-config", "", "web server configuration (JSON)")
	cmd.Flags().IntVar(&port, "port", 0, "override the configured port")
	return cmd
}

// buildDependencies wires the record store, engines and services for the server
func buildDependencies(ctx context.Context, opts *rootOptions, webCfg *web.Config) (web.Dependencies, error) {
	engineCfg, err := loadEngineConfig(opts)
	if err != nil {
		return web.Dependencies{}, err
	}
	registry, err := loadRegistry(opts.disastersPath)
	if err != nil {
		return web.Dependencies{}, err
	}

	s, closer, err := openStore(ctx, webCfg.Store)
	if err != nil {
		return web.Dependencies{}, err
	}

	m := metrics.New()
	claims := service.NewClaimService(s, registry, claim.NewScorerWithConfig(engineCfg.ClaimConfig(nil)), m, nil)
	reunifySvc := service.NewReunifyService(s, reunify.NewEngineWithConfig(engineCfg.ReunifyConfig(nil)), m, nil, engineCfg.Reunify.Workers)

	deps := web.Dependencies{
		Claims:   claims,
		Reunify:  reunifySvc,
		Registry: registry,
		Ingestor: evidence.NewIngestor(evidence.NewHeuristicAnalyzer(nil), nil),
		Metrics:  m,
		Closer:   closer,
	}

	if webCfg.Jobs.BatchMatchEnabled {
		timeout := time.Duration(webCfg.Jobs.BatchTimeoutSecs) * time.Second
		scheduler, err := jobs.NewScheduler(reunifySvc, webCfg.Jobs.BatchMatchSchedule, timeout)
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return web.Dependencies{}, err
		}
		deps.Scheduler = scheduler
	}

	log.WithFields(log.Fields{
		"store":     webCfg.Store.Driver,
		"disasters": len(registry.List()),
		"batch":     webCfg.Jobs.BatchMatchEnabled,
	}).Info("dependencies ready")

	return deps, nil
}

// openStore returns the configured record store and what to close on shutdown
func openStore(ctx context.Context, cfg web.StoreConfig) (store.Store, io.Closer, error) {
	if cfg.Driver == "" || cfg.Driver == "memory" {
		return store.NewMemStore(), nil, nil
	}

	dialect, err := parseDialect(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	var s *store.SQLStore
	var db *sql.DB
	if cfg.DSN != "" {
		db, err = store.Open(dialect, cfg.DSN)
		if err == nil {
			s, err = store.NewSQLStore(db, dialect)
		}
	} else {
		s, db, err = store.OpenSQLStore(dialect)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, fmt.Errorf("failed to open %s store: %w", dialect, err)
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}
