// The importer is the batch companion of the api: it drains the message
// drop folders into the store and exits. Intended for cron and for
// initial backfills.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"go.uber.org/zap"

	"patient-journey/internal/config"
	"patient-journey/internal/ingest"
	"patient-journey/internal/store"
)

func main() {
	wishOnly := flag.Bool("wish-only", false, "import only the ATD feed folder")
	orlineOnly := flag.Bool("orline-only", false, "import only the operating-room feed folder")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", "importer"))

	cfg := config.Load()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	pg := store.NewPostgresStore(conn)
	if err := pg.Init(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	importer := ingest.NewImporter(pg, nil, logger)

	if !*orlineOnly {
		if _, err := importer.ImportFolder(ctx, cfg.WishFolder, ingest.DialectWish); err != nil {
			logger.Fatal("wish folder import", zap.Error(err))
		}
	}
	if !*wishOnly {
		if _, err := importer.ImportFolder(ctx, cfg.OrlineFolder, ingest.DialectORLine); err != nil {
			logger.Fatal("orline folder import", zap.Error(err))
		}
	}
}
