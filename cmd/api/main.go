// @title           Tasker API
// @version         1.0
// @description     Multi-user task tracker with bearer-token auth and an admin role.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tasker/internal/app"
	"Tasker/internal/config"
	"Tasker/internal/logging"

	_ "Tasker/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(log)
	log.Info("config loaded, connecting to DB and Redis...", "env", cfg.App.Env, "version", cfg.App.Version)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init", "err", err)
		os.Exit(1)
	}
	log.Info("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "err", err)
			os.Exit(1)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           application.MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "err", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown", "err", err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(ctx)
	}

	if err := application.Close(ctx); err != nil {
		log.Error("app close", "err", err)
	}
}
