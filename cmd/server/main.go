package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docforge/internal/api"
	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/parser"
	"github.com/dgallion1/docforge/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	pdfCfg, err := cfg.PDFConfig()
	if err != nil {
		log.Error("invalid pdf heuristics", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := parser.Options{
		Engine:            cfg.Engine(),
		PDF:               pdfCfg,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		Logger:            log,
	}

	// Initialize pipeline. The server hooks its metrics before the workers start.
	orch := pipeline.NewOrchestrator(cfg, opts, log)
	srv := api.NewServer(orch, opts, log, cfg)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting docforge", "port", cfg.Port, "engine", cfg.Engine(), "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
