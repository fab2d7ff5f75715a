// Command ingest loads a plant catalog CSV export into the plants table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/herbal-remedy-api/internal/config"
	"github.com/herbal-remedy-api/internal/infrastructure/dynamo"
	s3infra "github.com/herbal-remedy-api/internal/infrastructure/s3"
	"github.com/herbal-remedy-api/internal/ingest"
	"github.com/herbal-remedy-api/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	source := flag.String("source", "", "catalog CSV path or s3://bucket/key")
	batch := flag.Int("batch", 1000, "documents per write batch")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, reading from environment")
	}
	cfg := config.Load()
	logging.New(cfg)

	if *source == "" {
		*source = cfg.CatalogSeed
	}
	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -source <path|s3://bucket/key> [-batch n]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *source, *batch); err != nil {
		slog.Error("ingest failed", "source", *source, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, source string, batch int) error {
	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}
	rc, err := ingest.Open(ctx, source, s3infra.Fetcher(s3Client))
	if err != nil {
		return err
	}
	defer rc.Close()

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("dynamo client: %w", err)
	}
	dynamo.Bootstrap(ctx, client, cfg.DynamoTables)

	res, err := ingest.Load(ctx, rc, dynamo.NewCatalogRepo(client, cfg.DynamoTables.Plants), batch)
	if err != nil {
		return err
	}
	slog.Info("catalog ingested", "plants", len(res.Docs), "rows", res.Rows, "skipped", res.Skipped)
	return nil
}
