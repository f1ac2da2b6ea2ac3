package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akulikov/research-assistant/internal/adapters/mcpserver"
	"github.com/akulikov/research-assistant/internal/bootstrap"
	"github.com/akulikov/research-assistant/internal/config"
	"github.com/akulikov/research-assistant/internal/observability/logging"
)

const serviceName = "mcp"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// Stdout carries the MCP protocol; all logging goes to stderr.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))

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

	srv := mcpserver.New(app.Gate, cfg.SearchTopK)
	slog.Info("mcp server on stdio")
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
