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

	_ "github.com/joho/godotenv/autoload"

	"snapfeed/internal/devserver"
	"snapfeed/internal/logger"
)

func gracefulShutdown(apiServer *http.Server, log *slog.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// Give in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
	done <- true
}

func main() {
	log := logger.New("devserver")

	apiServer := devserver.NewHTTPServer(log)
	log.Info("dev backend listening", "addr", apiServer.Addr)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, log, done)

	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	<-done
}
