package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"patient-journey/internal/auth"
	"patient-journey/internal/cache"
	"patient-journey/internal/config"
	"patient-journey/internal/ingest"
	"patient-journey/internal/store"
	"patient-journey/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", "api"))

	cfg := config.Load()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	pg := store.NewPostgresStore(conn)
	if err := pg.Init(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	// Redis is optional: without it every census request replays from
	// scratch, which is correct but slower.
	var censusCache *cache.CensusCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, census cache disabled", zap.Error(err))
		} else {
			censusCache = cache.NewCensusCache(rdb, logger)
		}
	}

	hub := ws.NewHub(logger)
	importer := ingest.NewImporter(pg, hub, logger)
	authSvc := auth.NewService(cfg.JWTSecret)

	srv := NewServer(pg, authSvc, hub, importer, censusCache, cfg, logger)

	logger.Info("api listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Routes()); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
