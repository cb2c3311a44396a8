package main

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

const (
	bloomCapacity = 2_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// Column order of the export files. A first row starting with "kind" is
// treated as a header.
const (
	colKind = iota
	colName
	colAddress
	colTaxID
	colEmail
	colAnnualFee
	colShippingDiscount
	numColumns
)

type customerWriter interface {
	Upsert(ctx context.Context, c customer.Customer) error
}

type ingestStats struct {
	written    int
	duplicates int
	suspects   int
}

// ingest deduplicates tax ids in three passes. Pass 1 builds one bloom
// filter per file and flags ids repeated inside a file. Pass 2 flags ids that
// hit another file's filter. Only flagged ids ("suspects") are tracked
// exactly in pass 3, which writes records in file order.
func ingest(ctx context.Context, files []string, w customerWriter) (ingestStats, error) {
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters := make([]*bloom.BloomFilter, len(files))
	local := make([]map[string]struct{}, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			suspects := make(map[string]struct{})
			if err := streamCustomers(gctx, path, func(taxID string, _ []string) error {
				if filter.TestAndAddString(taxID) {
					suspects[taxID] = struct{}{}
				}
				return nil
			}); err != nil {
				return errors.Wrapf(err, "build filter for %s", path)
			}
			filters[i], local[i] = filter, suspects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ingestStats{}, err
	}

	slog.Info("pass 2: finding cross-file suspects")

	cross := make([]map[string]struct{}, len(files))
	g, gctx = errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			suspects := make(map[string]struct{})
			if err := streamCustomers(gctx, path, func(taxID string, _ []string) error {
				for j, f := range filters {
					if j != i && f.TestString(taxID) {
						suspects[taxID] = struct{}{}
						break
					}
				}
				return nil
			}); err != nil {
				return errors.Wrapf(err, "scan %s for suspects", path)
			}
			cross[i] = suspects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ingestStats{}, err
	}

	// suspect ids map to whether they were already written.
	suspects := make(map[string]bool)
	for _, set := range append(local, cross...) {
		for id := range set {
			suspects[id] = false
		}
	}

	slog.Info("pass 3: writing customers", slog.Int("suspects", len(suspects)))

	stats := ingestStats{suspects: len(suspects)}
	for _, path := range files {
		err := streamCustomers(ctx, path, func(taxID string, record []string) error {
			if written, ok := suspects[taxID]; ok {
				if written {
					stats.duplicates++
					return nil
				}
				suspects[taxID] = true
			}

			c, err := parseCustomer(record)
			if err != nil {
				return err
			}
			if err := w.Upsert(ctx, c); err != nil {
				return errors.Wrapf(err, "upsert %s", taxID)
			}
			stats.written++
			if stats.written%progressEvery == 0 {
				slog.Info("write progress", slog.Int("written", stats.written))
			}
			return nil
		})
		if err != nil {
			return stats, errors.Wrapf(err, "write %s", path)
		}
	}
	return stats, nil
}

// streamCustomers calls fn for every data row of a gzip CSV export.
func streamCustomers(ctx context.Context, path string, fn func(taxID string, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = numColumns
	r.ReuseRecord = true

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if line == 1 && strings.EqualFold(record[colKind], "kind") {
			continue
		}
		taxID := strings.TrimSpace(record[colTaxID])
		if taxID == "" {
			return errors.Errorf("%s:%d: empty tax id", path, line)
		}
		if err := fn(taxID, record); err != nil {
			return errors.Wrapf(err, "%s:%d", path, line)
		}
	}
}

func parseCustomer(record []string) (customer.Customer, error) {
	kind, err := customer.ParseKind(strings.TrimSpace(record[colKind]))
	if err != nil {
		return nil, err
	}
	fee, err := parseDecimal(record[colAnnualFee])
	if err != nil {
		return nil, errors.Wrap(err, "annual fee")
	}
	rate, err := parseDecimal(record[colShippingDiscount])
	if err != nil {
		return nil, errors.Wrap(err, "shipping discount")
	}
	return customer.Restore(kind, customer.Profile{
		Name:    strings.TrimSpace(record[colName]),
		Address: strings.TrimSpace(record[colAddress]),
		TaxID:   strings.TrimSpace(record[colTaxID]),
		Email:   strings.TrimSpace(record[colEmail]),
	}, fee, rate)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
