package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"edgefn/function"
	"edgefn/internal/config"
	"edgefn/internal/server"
	"edgefn/pkg/logger"
)

func main() {
	l := logger.Get()
	defer l.Sync()
	zap.ReplaceGlobals(l)

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", zap.Error(err))
	}

	srv := server.New(cfg, function.Handle)

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			l.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	l.Info("edgefn dev server started", zap.String("address", cfg.Addr()))

	// Wait for shutdown signal
	<-stop

	l.Info("Shutting down...")

	// Give it some time to complete in-flight requests
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal("Server shutdown failed", zap.Error(err))
	}

	l.Info("Server stopped")
}
