// Lien Portal Core - Municipal Lien Search Ordering Backend
//
// This is the main entry point for the Lien Portal service. It fronts
// the upstream GovMetric API for client applications: authenticating
// users, managing their sessions, and serving the transformed
// county/municipality catalogue with a local cache for upstream
// outages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/munisearch/lienportal-core/migrations"

	"github.com/redis/go-redis/v9"

	"github.com/munisearch/lienportal-core/internal/api"
	"github.com/munisearch/lienportal-core/internal/govmetric"
	"github.com/munisearch/lienportal-core/internal/infrastructure/config"
	"github.com/munisearch/lienportal-core/internal/infrastructure/database"
	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
	"github.com/munisearch/lienportal-core/internal/infrastructure/metrics"
	"github.com/munisearch/lienportal-core/internal/place"
	"github.com/munisearch/lienportal-core/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lien Portal",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Upstream client
	upstream := govmetric.New(govmetric.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.GetUpstreamTimeout(),
	}, log)
	log.Info("upstream client configured", "base_url", cfg.Upstream.BaseURL)

	// Session stores: durable sessions always go to SQLite; the
	// ephemeral scope uses Redis when configured, process memory
	// otherwise.
	durable := session.NewSQLiteStore(db.DB, log)
	var ephemeral session.Store
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			return fmt.Errorf("connecting to Redis: %w", pingErr)
		}
		defer func() {
			log.Info("closing Redis connection")
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error("error closing Redis", "error", closeErr)
			}
		}()
		ephemeral = session.NewRedisStore(redisClient, log)
		log.Info("Redis connected", "addr", cfg.Redis.Addr)
	} else {
		ephemeral = session.NewMemoryStore()
		log.Info("Redis disabled, ephemeral sessions held in memory")
	}

	// Session manager
	sessions := session.NewManager(session.ManagerConfig{
		JWTSecret:    cfg.Security.JWT.Secret,
		LoginTimeout: cfg.GetLoginTimeout(),
	}, session.ManagerDeps{
		Durable:   durable,
		Ephemeral: ephemeral,
		Upstream:  upstream,
		Log:       log,
	})

	// Background expiry sweep
	go sessions.SweepLoop(ctx, cfg.GetCheckInterval())
	log.Info("session sweep started", "interval", cfg.GetCheckInterval())

	// Connect to InfluxDB (optional)
	var recorder api.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := metrics.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// API server
	server, err := api.New(api.Deps{
		Config:      cfg.Server,
		Logger:      log,
		Sessions:    sessions,
		Upstream:    upstream,
		Transformer: place.NewTransformer(cfg.Upstream.State, log),
		Cache:       place.NewSQLiteRepository(db.DB),
		Database:    db,
		Metrics:     recorder,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. Redis (if enabled)
	// 4. Database

	log.Info("Lien Portal stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LIENPORTAL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LIENPORTAL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
