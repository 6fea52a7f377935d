package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thanhnp/degreechain/internal/api"
	"github.com/thanhnp/degreechain/internal/autominer"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	log := logrus.WithField("component", "server")
	log.Info("Starting degreechain server...")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	l, err := a.openLedger(reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.WithError(err).Error("Error closing ledger store")
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var miner *autominer.Miner
	if a.cfg.Ledger.AutoMineInterval > 0 {
		miner = autominer.New(l, a.cfg.Ledger.AutoMineInterval, a.cfg.Ledger.MineTimeout)
		if err := miner.Start(ctx); err != nil {
			log.WithError(err).Warn("Failed to start auto-miner")
			miner = nil
		}
	}

	router := api.NewRouter(l, api.Options{
		VerificationURL: a.cfg.QR.VerificationURL,
		QRSize:          a.cfg.QR.Size,
		MineTimeout:     a.cfg.Ledger.MineTimeout,
		Gatherer:        reg,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("Shutting down...")

	// Cancel context to stop the auto-miner
	cancel()
	if miner != nil {
		if err := miner.Stop(); err != nil {
			log.WithError(err).Error("Error stopping auto-miner")
		}
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Server stopped")
	return runErr
}
