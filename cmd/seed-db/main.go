// Command seed-db migrates the PostgreSQL schema and loads sample customers
// with one pending order each.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
	"github.com/xenking/nextgen-orders/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		skipOrders  bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&skipOrders, "skip-orders", false, "only upsert customers")
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

	if err := run(ctx, databaseURL, skipOrders); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

type seedOrder struct {
	taxID string
	items []order.LineItem
}

func sampleCustomers() ([]customer.Customer, error) {
	gold, err := customer.NewPremium(customer.Profile{
		Name:    "Ada Lovelace",
		Address: "12 St James's Square, London",
		TaxID:   "GB-100001",
		Email:   "ada@example.com",
	}, decimal.RequireFromString("120.00"), decimal.RequireFromString("0.15"))
	if err != nil {
		return nil, err
	}
	return []customer.Customer{
		gold,
		customer.NewStandard(customer.Profile{
			Name:    "Charles Babbage",
			Address: "1 Dorset Street, London",
			TaxID:   "GB-100002",
			Email:   "charles@example.com",
		}),
	}, nil
}

func sampleOrders() []seedOrder {
	li := func(code, price string, qty int) order.LineItem {
		return order.LineItem{ArticleCode: code, SalePrice: decimal.RequireFromString(price), Quantity: qty}
	}
	return []seedOrder{
		{taxID: "GB-100001", items: []order.LineItem{li("ENGINE-01", "10.50", 2), li("PUNCH-CRD", "4.50", 1)}},
		{taxID: "GB-100002", items: []order.LineItem{li("GEAR-SET", "7.25", 4)}},
	}
}

func run(ctx context.Context, databaseURL string, skipOrders bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	customers := postgres.NewCustomerRepository(pool)
	seeded, err := sampleCustomers()
	if err != nil {
		return errors.Wrap(err, "build sample customers")
	}
	byTaxID := make(map[string]customer.Customer, len(seeded))
	for _, c := range seeded {
		if err := customers.Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "seed customers")
		}
		byTaxID[c.Identity().TaxID] = c
		slog.Info("upserted customer", slog.String("tax_id", c.Identity().TaxID), slog.String("tier", c.TierLabel()))
	}

	if skipOrders {
		return nil
	}

	orders := postgres.NewOrderRepository(pool)
	items := postgres.NewLineItemRepository(pool)
	for _, so := range sampleOrders() {
		o := order.New(0, time.Now().UTC().Truncate(time.Second), byTaxID[so.taxID], nil, order.StatusPending)
		if err := orders.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "create order for %s", so.taxID)
		}
		for _, it := range so.items {
			it.OrderNumber = o.Number
			if err := items.Add(ctx, &it); err != nil {
				return errors.Wrapf(err, "add line item %s", it.ArticleCode)
			}
		}

		total, err := o.TotalPrice(ctx, items)
		if err != nil {
			return err
		}
		slog.Info("created order",
			slog.Int64("number", o.Number),
			slog.String("tax_id", so.taxID),
			slog.String("total", total.StringFixed(2)),
		)
	}
	return nil
}
