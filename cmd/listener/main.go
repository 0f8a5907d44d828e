// The listener receives HL7 messages over MLLP from the hospital
// interface engine and stores the decoded records.
package main

import (
	"context"
	"database/sql"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"patient-journey/internal/config"
	"patient-journey/internal/ingest"
	"patient-journey/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", "listener"))

	cfg := config.Load()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := conn.PingContext(ctx); err != nil {
		cancel()
		logger.Fatal("database unreachable", zap.Error(err))
	}
	cancel()

	pg := store.NewPostgresStore(conn)
	if err := pg.Init(context.Background()); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	ln, err := net.Listen("tcp", cfg.ListenerAddr)
	if err != nil {
		logger.Fatal("listen", zap.String("addr", cfg.ListenerAddr), zap.Error(err))
	}

	importer := ingest.NewImporter(pg, nil, logger)
	server := ingest.NewMLLPServer(importer, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mllp listener started", zap.String("addr", cfg.ListenerAddr))
	if err := server.Serve(runCtx, ln); err != nil {
		logger.Fatal("mllp listener", zap.Error(err))
	}
	logger.Info("mllp listener stopped")
}
