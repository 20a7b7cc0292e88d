package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-attendance/internal/admission"
	"ms-attendance/internal/attendance"
	"ms-attendance/internal/auth"
	"ms-attendance/internal/cache"
	"ms-attendance/internal/config"
	"ms-attendance/internal/database/migrations"
	"ms-attendance/internal/fuzzy"
	"ms-attendance/internal/kafka"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
	"ms-attendance/internal/normalize"
	"ms-attendance/internal/scan"
	scandb "ms-attendance/internal/scan/db"
	scanredis "ms-attendance/internal/scan/redis"
	"ms-attendance/internal/scan/scan_api"
	"ms-attendance/internal/sse"
)

func connectDatabase(cfg *config.Config, appLogger *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	appLogger.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	appLogger := logger.NewLogger()
	defer appLogger.Close()

	cfg := config.Load()

	bunDB := connectDatabase(cfg, appLogger)
	defer bunDB.Close()

	if os.Getenv("AUTO_MIGRATE") != "false" {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.Up(); err != nil {
			appLogger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		appLogger.Info("DATABASE", "Schema migrations applied")
	}

	store := &scandb.DB{Bun: bunDB}

	// Best-effort tuple lock; the service runs fine without redis.
	var tupleLock attendance.TupleLock
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			appLogger.Warn("REDIS", fmt.Sprintf("Redis unavailable, scan locks disabled: %v", err))
		} else {
			appLogger.Info("REDIS", "Redis connection successful")
			tupleLock = scanredis.NewLock(rdb)
		}
	}

	var publisher attendance.Publisher
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.AttendanceUpdated}); err != nil {
			appLogger.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.AttendanceUpdated)
		defer producer.Close()
		publisher = producer
	}

	emitter := sse.NewAttendanceEventEmitter()

	normalizer := normalize.NewCache(cfg.Caches.NormalizationCapacity)
	matcher := fuzzy.NewMatcher(normalizer, cfg.Matching)
	validator := scan.NewPayloadValidator(cfg.Caches.PayloadCapacity)
	memberCache := cache.NewBounded[string, models.Member](cfg.Caches.MemberCapacity)
	kegiatanCache := cache.NewBounded[int64, models.Kegiatan](cfg.Caches.KegiatanCapacity)
	divisionLists := cache.NewBounded[int64, []string](cfg.Caches.DivisionListCapacity)

	checker := admission.NewChecker(store, matcher, divisionLists)
	engine := attendance.NewEngine(store, emitter, publisher, tupleLock, appLogger)
	service := scan.NewService(store, validator, matcher, checker, engine, memberCache, kegiatanCache, appLogger)

	handler := scan_api.NewHandler(service, checker, store, appLogger)
	sseHandler := scan_api.NewSSEHandler(appLogger, emitter)

	r := chi.NewRouter()
	r.Get("/health", handler.Health)
	r.Post("/scan", handler.Scan)
	r.Get("/kegiatan/{kegiatanID}/live", sseHandler.HandleKegiatanAttendance)
	r.Get("/members/{uniqueID}/qr", handler.MemberQR)

	// Admission configuration mutates policy, so it sits behind SSO when an
	// issuer is configured.
	if os.Getenv("OIDC_ISSUER") != "" {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware())
			r.Post("/kegiatan/{kegiatanID}/divisions", handler.ConfigureDivisions)
		})
	} else {
		appLogger.Warn("AUTH", "OIDC_ISSUER not set, admission configuration is unauthenticated")
		r.Post("/kegiatan/{kegiatanID}/divisions", handler.ConfigureDivisions)
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("🚀 Attendance scan service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	appLogger.Info("SERVER", "✅ Attendance scan service shutdown complete")
}
