package app

import (
	"client-registry/database"
	"client-registry/metrics"
	"client-registry/services"
	"client-registry/session"
	"client-registry/validator"
	"log/slog"
	"time"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	DB           *database.DB
	Clients      *database.ClientRepo
	SessionStore *session.SessionStore
	Validator    *validator.Validator
	Metrics      metrics.Recorder
	Logger       *slog.Logger
}

// New creates a new App instance with all dependencies.
// Every session created by the store gets its own ClientManager over clients.
func New(db *database.DB, clients *database.ClientRepo, recorder metrics.Recorder, sessionTTL time.Duration, logger *slog.Logger) *App {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	a := &App{
		DB:        db,
		Clients:   clients,
		Validator: validator.New(),
		Metrics:   recorder,
		Logger:    logger,
	}
	a.SessionStore = session.NewStore(sessionTTL, a.NewClientManager)
	return a
}

// NewClientManager returns a manager with an empty search cache.
func (a *App) NewClientManager() *services.ClientManager {
	return services.NewClientManager(a.Clients, a.Validator, a.Metrics)
}
