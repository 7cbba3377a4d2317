package main

import (
	"client-registry/config"
	"client-registry/config/setup"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "client-registry",
		Short: "Client registry - paginated client search with session-scoped caching",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Name() != "version" {
				config.Load()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "initdb",
			Short: "Create the schema (running DATABASE_INIT_SCRIPT on a new store) and exit",
			RunE:  initDB,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "client-registry %s (commit: %s)\n", version, commit)
			},
		},
		clientsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig

	logger, logCloser := setup.NewLogger(cfg)
	defer logCloser.Close()
	slog.SetDefault(logger)

	db, err := setup.InitDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	application, err := setup.InitApp(db, cfg, reg, logger)
	if err != nil {
		db.Close()
		logger.Error("failed to initialize application", "error", err)
		return err
	}

	app := setup.NewFiberApp(cfg, logger)
	setup.ApplyMiddleware(app, cfg, logger)
	setup.RegisterRoutes(app, application, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env, "page_size", cfg.PageSize)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	setup.Shutdown(ctx, application, logger)

	logger.Info("server stopped")
	return nil
}

func initDB(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig

	logger, logCloser := setup.NewLogger(cfg)
	defer logCloser.Close()
	slog.SetDefault(logger)

	db, err := setup.InitDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	return db.Close()
}
