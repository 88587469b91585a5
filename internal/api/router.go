package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/sentinel/internal/alerting"
	"github.com/your-org/sentinel/internal/api/handlers"
	"github.com/your-org/sentinel/internal/api/ws"
	"github.com/your-org/sentinel/internal/auth"
	"github.com/your-org/sentinel/internal/faceid"
	"github.com/your-org/sentinel/internal/forecast"
	"github.com/your-org/sentinel/internal/narrative"
	"github.com/your-org/sentinel/internal/queue"
	"github.com/your-org/sentinel/internal/storage"
)

type RouterConfig struct {
	APIKey     string
	DB         *storage.PostgresStore
	MinIO      *storage.MinIOStore
	Producer   *queue.Producer
	Hub        *ws.Hub
	Engine     *alerting.Engine
	Forecaster *forecast.OccupancyForecaster
	Matcher    *faceid.Matcher
	Narrative  *narrative.Generator
	// EmbedFn extracts a face embedding from image bytes (ONNX embedder).
	EmbedFn func(imageData []byte) ([]float32, error)
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket alert feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Entities & timelines
	entityH := handlers.NewEntityHandler(cfg.DB)
	v1.GET("/entities", entityH.Search)
	v1.GET("/entities/:id", entityH.Get)

	timelineH := handlers.NewTimelineHandler(cfg.DB)
	v1.GET("/entities/:id/timeline", timelineH.Get)

	summaryH := handlers.NewSummaryHandler(cfg.DB, cfg.Narrative)
	v1.GET("/entities/:id/summary", summaryH.Get)

	predictH := handlers.NewPredictHandler(cfg.DB, cfg.Narrative)
	v1.POST("/entities/:id/predict", predictH.Predict)

	// Alerts
	alertH := handlers.NewAlertHandler(cfg.Engine, cfg.Narrative)
	v1.GET("/alerts", alertH.List)

	// Occupancy forecast
	forecastH := handlers.NewForecastHandler(cfg.DB, cfg.Forecaster, cfg.Narrative)
	v1.POST("/forecast", forecastH.Forecast)

	// Face identity
	faceH := handlers.NewFaceHandler(cfg.DB, cfg.MinIO, cfg.Matcher)
	faceH.EmbedFn = cfg.EmbedFn
	v1.POST("/search/face", faceH.SearchByEmbedding)
	v1.POST("/search", faceH.SearchByImage)
	v1.GET("/frames/:id/snapshot", faceH.Snapshot)

	return r
}
