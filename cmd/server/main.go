// main.go — ativeplay ingestion and serving backend.
// Admits playlist parses, runs background ingestion jobs, and serves
// the browse/search/HLS-proxy/session-handoff API built on top of them.
// Port: 3001 (env: PORT).
//
// Routes:
//
//	GET  /health
//	POST /api/playlist/parse
//	GET  /api/playlist/:hash/status
//	GET  /api/playlist/:hash/items
//	GET  /api/playlist/:hash/groups
//	GET  /api/playlist/:hash/series
//	GET  /api/playlist/:hash/series/:seriesHash/episodes
//	GET  /api/playlist/:hash/search
//	GET  /api/playlist/:hash/validate
//	GET  /api/proxy/hls
//	POST /session/create
//	GET  /session/:id/poll
//	POST /session/:id/send
//	GET  /metrics
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
	"github.com/wayidiomas/ativeplay-mvp/internal/cleanup"
	"github.com/wayidiomas/ativeplay-mvp/internal/config"
	"github.com/wayidiomas/ativeplay-mvp/internal/coordination"
	"github.com/wayidiomas/ativeplay-mvp/internal/httpapi"
	"github.com/wayidiomas/ativeplay-mvp/internal/logger"
	"github.com/wayidiomas/ativeplay-mvp/internal/metrics"
	"github.com/wayidiomas/ativeplay-mvp/internal/netguard"
	"github.com/wayidiomas/ativeplay-mvp/internal/orchestrator"
	"github.com/wayidiomas/ativeplay-mvp/internal/proxy"
	"github.com/wayidiomas/ativeplay-mvp/internal/ratelimit"
	"github.com/wayidiomas/ativeplay-mvp/internal/sourcedetect"
	"github.com/wayidiomas/ativeplay-mvp/internal/store"
	"github.com/wayidiomas/ativeplay-mvp/internal/telemetry"
)

// seriesCacheCapacity bounds the classifier's series-extraction memo.
const seriesCacheCapacity = 10_000

// shutdownTimeout bounds how long in-flight requests get to finish
// during a graceful shutdown.
const shutdownTimeout = 10 * time.Second

// version is stamped into Sentry releases; no build-time injection yet,
// so it's a fixed placeholder.
const version = "ativeplay-ingest/dev"

func main() {
	cfg := config.FromEnv()
	slog := logger.New(cfg.LogFormat, cfg.LogLevel)

	if err := telemetry.Init(cfg.SentryDSN, version); err != nil {
		slog.Error("telemetry init failed", "error", err)
	}
	defer telemetry.Flush()

	db, err := store.Open(cfg.DatabaseURL, cfg.DBMaxConnections)
	if err != nil {
		slog.Error("store open failed", "error", err)
		log.Fatalf("store open: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("ensure schema failed", "error", err)
		log.Fatalf("ensure schema: %v", err)
	}
	slog.Info("database connected and schema ensured")

	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("parse redis url failed", "error", err)
		log.Fatalf("parse redis url: %v", err)
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()
	coord := coordination.New(coordination.NewRedisStore(redisClient))
	slog.Info("coordination store connected")

	limiter := ratelimit.New(ratelimit.NewRedisStore(redisClient))

	detector := sourcedetect.NewClient(cfg.FetchTimeout(), cfg.UserAgent)
	classify := classifier.New(seriesCacheCapacity)

	orch := &orchestrator.Orchestrator{
		Store:      db,
		Coord:      coord,
		Detector:   detector,
		Classifier: classify,
		HTTPClient: netguard.NewHTTPClient(cfg.FetchTimeout()),
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		MaxSizeMB:  cfg.MaxM3USizeMB,
		Log:        slog,
	}

	proxyClient := proxy.New(cfg.HLSProxyTimeout(), cfg.BaseURL)

	worker := &cleanup.Worker{Store: db, Log: slog}
	go worker.Start(ctx)
	slog.Info("cleanup worker started")

	api := &httpapi.Server{
		Orchestrator: orch,
		Store:        db,
		Coord:        coord,
		Proxy:        proxyClient,
		RateLimiter:  limiter,
		MaxItemsPage: cfg.MaxItemsPage,
		SessionTTL:   cfg.SessionTTL(),
		BaseURL:      cfg.BaseURL,
		Log:          slog,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", api.Router())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: telemetry.PanicRecoveryMiddleware()(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port, "env", cfg.NodeEnv)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		log.Fatalf("server error: %v", err)
	}

	slog.Info("server stopped")
}
