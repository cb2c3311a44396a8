package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
	"github.com/xenking/nextgen-orders/internal/storage/memory"
	"github.com/xenking/nextgen-orders/internal/storage/postgres"
	"github.com/xenking/nextgen-orders/internal/storage/sqlite"
	"github.com/xenking/nextgen-orders/pkg/health"
)

// backend is the set of repositories behind one storage driver.
type backend struct {
	customers customer.Repository
	orders    order.Repository
	items     order.LineItemRepository

	// ping is nil when the driver has nothing to probe.
	ping  health.Pinger
	close func()
}

func openBackend(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (*backend, error) {
	lg.Info("Opening storage", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &backend{
			customers: postgres.NewCustomerRepository(pool),
			orders:    postgres.NewOrderRepository(pool),
			items:     postgres.NewLineItemRepository(pool),
			ping:      pool,
			close:     pool.Close,
		}, nil
	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		return &backend{
			customers: sqlite.NewCustomerRepository(db),
			orders:    sqlite.NewOrderRepository(db),
			items:     sqlite.NewLineItemRepository(db),
			ping:      health.PingFunc(db.PingContext),
			close: func() {
				if err := db.Close(); err != nil {
					lg.Warn("Close sqlite", zap.Error(err))
				}
			},
		}, nil
	case DriverMemory:
		return &backend{
			customers: memory.NewCustomerRepository(),
			orders:    memory.NewOrderRepository(),
			items:     memory.NewLineItemRepository(),
			close:     func() {},
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
