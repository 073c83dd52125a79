// storekv-server runs the transactional sharded key-value store over the
// line-oriented TCP protocol described in SPEC_FULL.md part E.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"storekv/internal/cache"
	"storekv/internal/config"
	"storekv/internal/engine"
	"storekv/internal/server"
)

func main() {
	cfg := config.LoadConfig()

	var storeCache engine.Cache
	if cfg.CacheCapacity > 0 {
		c, err := cache.New(cfg.CacheCapacity)
		if err != nil {
			log.Fatalf("failed to build cache: %v", err)
		}
		storeCache = c
		slog.Info("LRU cache adapter attached", "capacity", cfg.CacheCapacity)
	}

	e := engine.New(cfg.NumShards, storeCache)
	srv := server.New(cfg.Addr(), e)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErrCh:
		if err != nil {
			log.Fatalf("server stopped with error: %v", err)
		}
	case <-sigCh:
		slog.Info("termination signal received, shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
		slog.Info("server stopped cleanly")
	}
}
