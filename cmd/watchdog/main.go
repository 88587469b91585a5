package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/your-org/sentinel/internal/alerting"
	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/observability"
	"github.com/your-org/sentinel/internal/queue"
	"github.com/your-org/sentinel/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting sentinel watchdog", "interval", cfg.Alerting.SweepInterval.String())

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	engine := alerting.NewEngine(db, cfg.Alerting)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(cfg.Alerting.SweepInterval)
		defer ticker.Stop()

		sweep(ctx, engine, producer)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, engine, producer)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("watchdog stopping...")
	cancel()
	slog.Info("watchdog stopped")
}

func sweep(ctx context.Context, engine *alerting.Engine, producer *queue.Producer) {
	started := time.Now()
	alerts, err := engine.Scan(ctx, 0)
	if err != nil {
		slog.Error("alert sweep failed", "error", err)
		return
	}

	for i := range alerts {
		if err := producer.PublishAlert(ctx, categorySlug(string(alerts[i].Category)), alerts[i]); err != nil {
			slog.Warn("publish alert", "error", err)
		}
	}
	slog.Info("alert sweep complete", "alerts", len(alerts), "duration", time.Since(started).String())
}

// categorySlug turns "Missing Person" into a NATS-safe subject token.
func categorySlug(category string) string {
	return strings.ToLower(strings.ReplaceAll(category, " ", "_"))
}
