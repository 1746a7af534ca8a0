package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hr-portal/internal/adapters/storage/postgres"
	"hr-portal/internal/config"
	"hr-portal/internal/platform/logger"
	"hr-portal/internal/router"
	"hr-portal/internal/workers"

	"github.com/spf13/pflag"
)

// @title HR Portal API
// @version 0.1
// @description Portal interno de RRHH: ownership de recursos, access requests temporales y delegaciones.
// @BasePath /
func main() {
	configPath := pflag.String("config", "", "archivo YAML de configuración (default: $CONFIG_FILE)")
	port := pflag.String("port", "", "puerto HTTP (pisa config y PORT)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Logger:         log,
		DefaultGrant:   time.Duration(cfg.DefaultGrantMinutes) * time.Minute,
		SwaggerEnabled: cfg.SwaggerEnabled,
		Debug:          logger.ParseLevel(cfg.LogLevel) == logger.Debug,
	}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("db open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("db schema failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		gdb, err := postgres.OpenGorm(db, log, opts.Debug)
		if err != nil {
			log.Error("gorm open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		if err := postgres.Migrate(ctx, gdb); err != nil {
			log.Error("db migrate failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.DB = db
		opts.Gorm = gdb
		log.Info("storage: postgres", nil)
	} else {
		log.Warn("storage: in-memory (DB_DSN not set)", nil)
	}

	app, err := router.Build(opts)
	if err != nil {
		log.Error("router build failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	var wg sync.WaitGroup
	if cfg.LeaveSync.Enabled {
		syncer := workers.NewLeaveStatusSync(app.Employees, app.Leaves, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers.Loop(ctx, "leave-status-sync", cfg.LeaveSync.Interval, syncer, log)
		}()
	}
	if sd := cfg.SimulatedDecisions; sd.Enabled {
		mgr := workers.NewSimulatedManager(app.Leaves, app.Leaves, workers.SimulatedManagerOptions{
			MinAge:       sd.MinAge,
			ApproveRatio: sd.ApproveRatio,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers.Loop(ctx, workers.SimulatedDecider, sd.Interval, mgr, log)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", map[string]any{"error": err.Error()})
		}
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err.Error()})
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
	log.Info("server stopped", nil)
}
