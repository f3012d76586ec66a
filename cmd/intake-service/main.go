package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/apptintake/internal/handlers"
	"github.com/md-rashed-zaman/apptintake/internal/model"
	"github.com/md-rashed-zaman/apptintake/internal/sheets"
	"github.com/md-rashed-zaman/apptintake/internal/storage"
	"github.com/md-rashed-zaman/apptintake/internal/submit"
	"github.com/md-rashed-zaman/apptintake/internal/whatsapp"
	"github.com/md-rashed-zaman/apptintake/libs/config"
	"github.com/md-rashed-zaman/apptintake/libs/db"
	"github.com/md-rashed-zaman/apptintake/libs/httpx"
	otelx "github.com/md-rashed-zaman/apptintake/libs/otel"
	"github.com/md-rashed-zaman/apptintake/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "intake-service")
	port, err := config.Port("PORT", "8000")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	// The service stays up without a database: the greeting and diagnostics
	// endpoints keep working and submissions report a database error.
	var pool *db.Pool
	if dbURL := strings.TrimSpace(config.String("DATABASE_URL", "")); dbURL != "" {
		pool, err = db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed; continuing without persistence", "err", err)
			pool = nil
		}
	} else {
		logger.Warn("DATABASE_URL not set; running without persistence")
	}
	defer pool.Close()

	docs := storage.NewDocumentsRepository(pool, config.String("DATABASE_NAME", "public"))
	if pool != nil {
		if err := docs.EnsureKind(ctx, model.KindAppointment); err != nil {
			logger.Error("ensure appointment table failed", "err", err)
		}
	}

	sheetsCfg := sheets.ConfigFromEnv()
	whatsappCfg := whatsapp.ConfigFromEnv()
	logger.Info("notification channels resolved",
		"google_sheets", sheetsCfg.Configured(),
		"whatsapp", whatsappCfg.Configured(),
	)

	orchestrator := submit.NewOrchestrator(
		docs,
		sheets.NewAppender(sheetsCfg),
		whatsapp.NewSender(whatsappCfg),
		logger,
	).WithTimeout(time.Duration(config.Int("CHANNEL_TIMEOUT_SECONDS", 10)) * time.Second)

	appointmentsHandler := handlers.NewAppointmentsHandler(orchestrator, logger)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(
		docs,
		pool != nil,
		config.IsSet("DATABASE_URL"),
		config.IsSet("DATABASE_NAME"),
	)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/", handlers.Root)
	mux.HandleFunc("/api/hello", handlers.Hello)
	mux.HandleFunc("/test", diagnosticsHandler.Check)
	mux.HandleFunc("/appointments", appointmentsHandler.Create)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", true),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 30))*time.Second),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "intake")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func parseList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
