package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"career-backend/internal/bootstrap"
	"career-backend/internal/ratelimit"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/server"
	"career-backend/internal/shared/telemetry"
)

const sweepInterval = time.Minute

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer telemetry.Sync()

	shutdownTracer, err := telemetry.InitTracer(ctx, "career-backend", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracer init: %v", err)
	}
	defer shutdownTracer()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	go app.Sessions.Run(ctx, sweepInterval)
	if mem, ok := app.LimiterStore.(*ratelimit.MemoryStore); ok {
		go sweepLimiter(ctx, mem)
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	telemetry.Info("server.shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
}

func sweepLimiter(ctx context.Context, store *ratelimit.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}
