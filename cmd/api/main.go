package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/sentinel/internal/alerting"
	"github.com/your-org/sentinel/internal/api"
	"github.com/your-org/sentinel/internal/api/ws"
	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/faceid"
	"github.com/your-org/sentinel/internal/forecast"
	"github.com/your-org/sentinel/internal/narrative"
	"github.com/your-org/sentinel/internal/observability"
	"github.com/your-org/sentinel/internal/queue"
	"github.com/your-org/sentinel/internal/storage"
	"github.com/your-org/sentinel/pkg/dto"
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

	slog.Info("starting sentinel API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Relay watchdog alerts to connected WebSocket clients
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create alert consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeAlerts(ctx, "api-alerts", func(ctx context.Context, msg jetstream.Msg) error {
		var alert dto.WSAlert
		if err := json.Unmarshal(msg.Data(), &alert); err != nil {
			hub.BroadcastRaw(msg.Data())
			return nil
		}
		hub.BroadcastAlert(&alert)
		return nil
	})
	if err != nil {
		slog.Warn("start alert consumer", "error", err)
	}

	// Import batch notices share the same feed; clients filtering on an
	// alert type never see them.
	err = consumer.ConsumeImports(ctx, "api-imports", func(ctx context.Context, msg jetstream.Msg) error {
		hub.BroadcastRaw(msg.Data())
		return nil
	})
	if err != nil {
		slog.Warn("start import consumer", "error", err)
	}

	// Initialize ONNX Runtime for the image search endpoint
	var embedFn func([]byte) ([]float32, error)

	ort.SetSharedLibraryPath(getONNXLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Warn("onnx runtime init failed — image search will be unavailable", "error", err)
	} else {
		embedder, err := faceid.NewEmbedder(cfg.FaceID.ModelsDir)
		if err != nil {
			slog.Warn("face embedder init failed — image search will be unavailable", "error", err)
		} else {
			embedFn = embedder.EmbedImage
			defer embedder.Close()
			defer ort.DestroyEnvironment()
			slog.Info("face embedder ready")
		}
	}

	generator, err := narrative.NewGenerator(cfg.Narrative)
	if err != nil {
		slog.Error("create narrative generator", "error", err)
		os.Exit(1)
	}

	capacities := make(map[string]int, len(cfg.Alerting.Locations))
	for name, policy := range cfg.Alerting.Locations {
		capacities[name] = policy.MaxCapacity
	}

	router := api.NewRouter(api.RouterConfig{
		APIKey:     cfg.Server.APIKey,
		DB:         db,
		MinIO:      minioStore,
		Producer:   producer,
		Hub:        hub,
		Engine:     alerting.NewEngine(db, cfg.Alerting),
		Forecaster: forecast.NewOccupancyForecaster(capacities),
		Matcher:    faceid.NewMatcher(db, cfg.FaceID.MatchDistance),
		Narrative:  generator,
		EmbedFn:    embedFn,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

// getONNXLibPath returns the ONNX Runtime shared library path.
func getONNXLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}
