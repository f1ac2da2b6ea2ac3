package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/akulikov/research-assistant/internal/adapters/http"
	"github.com/akulikov/research-assistant/internal/bootstrap"
	"github.com/akulikov/research-assistant/internal/config"
	"github.com/akulikov/research-assistant/internal/observability/logging"
)

const serviceName = "api"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := app.Gate.Rebuild(ctx); err != nil {
		slog.Error("initial corpus rebuild failed", "error", err)
	}

	go func() {
		err := app.Queue.SubscribeCorpusChanged(ctx, func(handlerCtx context.Context, documentID string) error {
			received := time.Now()
			rebuildCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()
			return app.Gate.RebuildOnEvent(rebuildCtx, received)
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("corpus subscription ended", "error", err)
		}
	}()

	router := httpadapter.NewRouter(app.Ingest, app.Gate, app.Agent, app.Documents, app.Ledger, httpadapter.Options{
		ServiceName:    serviceName,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxConcurrent:  cfg.APIMaxConcurrent,
		Metrics:        app.Metrics,
	})
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
