package setup

import (
	"client-registry/app"
	"client-registry/config"
	"client-registry/database"
	"client-registry/metrics"
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// InitDatabase opens the configured store and creates the schema when absent
func InitDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseURL, database.Options{
		InitScript: cfg.DatabaseInitScript,
	})
	if err != nil {
		return nil, err
	}

	if err := db.InitializeSchemaIfAbsent(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "driver", cfg.DatabaseDriver, "dialect", db.Dialect().Name)
	return db, nil
}

// InitApp initializes the application with all dependencies.
// A nil registerer disables metrics.
func InitApp(db *database.DB, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*app.App, error) {
	// Create repository
	repo, err := database.NewClientRepo(db, db.Dialect(), cfg.PageSize)
	if err != nil {
		return nil, err
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if reg != nil {
		p, err := metrics.NewPrometheus(reg)
		if err != nil {
			return nil, err
		}
		recorder = p
	}

	application := app.New(db, repo, recorder, cfg.SessionTTL, logger)

	// Start session cleanup
	if err := application.SessionStore.StartCleanupRoutine(cfg.SessionSweep); err != nil {
		return nil, err
	}
	logger.Info("session cleanup routine started", "schedule", cfg.SessionSweep, "ttl", cfg.SessionTTL)

	return application, nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(ctx context.Context, application *app.App, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application.SessionStore != nil {
		application.SessionStore.Stop(ctx)
		logger.Info("session cleanup stopped")
	}

	// Close database
	if application.DB != nil {
		application.DB.Close()
		logger.Info("database closed")
	}
}
