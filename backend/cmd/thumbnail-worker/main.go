package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/filesmanager/backend/internal/router"
	"github.com/itchan-dev/filesmanager/backend/internal/setup"
	"github.com/itchan-dev/filesmanager/shared/config"
	"github.com/itchan-dev/filesmanager/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)
	log := logger.For("thumbnail_worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupWorker(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Public.MetricsPort),
		Handler:           router.NewWorkerMetrics(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("metrics server started", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
			stop()
		}
	}()

	log.Info("worker started", "driver", cfg.Public.Queue.Driver)
	// Run returns once ctx is cancelled
	if err := deps.Consumer.Run(ctx, deps.Thumbnailer.Process); err != nil {
		log.Error("consumer stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown", "error", err)
	}
	if err := deps.Close(shutdownCtx); err != nil {
		log.Error("closing dependencies", "error", err)
	}
	log.Info("worker stopped")
}
