// Command customer-ingest loads gzip-compressed CSV customer exports into
// PostgreSQL. A tax id seen more than once across the exports is imported
// from its first occurrence only, in file order.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/go-faster/errors"

	"github.com/xenking/nextgen-orders/internal/storage/postgres"
)

func main() {
	var (
		pattern     string
		databaseURL string
	)

	flag.StringVar(&pattern, "files", "data/customers*.csv.gz", "glob of gzip CSV exports to import")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, pattern, databaseURL); err != nil {
		slog.Error("customer ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("customer ingest completed successfully")
}

func run(ctx context.Context, pattern, databaseURL string) error {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return errors.Wrap(err, "glob input files")
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %q", pattern)
	}
	sort.Strings(files)

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	stats, err := ingest(ctx, files, postgres.NewCustomerRepository(pool))
	if err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Int("files", len(files)),
		slog.Int("written", stats.written),
		slog.Int("duplicates", stats.duplicates),
		slog.Int("suspects", stats.suspects),
	)
	return nil
}
