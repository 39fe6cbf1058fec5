package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamlit/streamlit-bokeh/internal/config"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/server"
	"github.com/streamlit/streamlit-bokeh/internal/storage"
)

func main() {
	ctx := context.Background()
	log := logger.GetGlobalLogger().WithComponent("main")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}

	if level := logger.ParseLevel(cfg.LogLevel); level != -1 {
		logger.GetGlobalLogger().SetLevel(level)
	}
	if format := logger.ParseFormat(cfg.LogFormat); format != -1 {
		logger.GetGlobalLogger().SetFormat(format)
	}

	deploymentMode := storage.DeploymentMode(cfg.DeploymentMode)
	srv, err := server.NewServer(ctx, cfg, deploymentMode)
	if err != nil {
		log.Fatal("failed to initialize server", err)
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.SetupRoutes(),
	}

	go func() {
		log.Info("server listening", map[string]interface{}{
			"port":    cfg.Port,
			"mode":    cfg.DeploymentMode,
			"version": config.GetVersion(),
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", err)
	}
}
