package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (placed_at, customer_id, status) VALUES (?, ?, ?)`

	getOrderSQL = `SELECT o.number, o.placed_at, o.status,
			c.id, c.kind, c.name, c.address, c.tax_id, c.email, c.annual_fee, c.shipping_discount
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.number = ?`

	updateOrderStatusSQL = `UPDATE orders SET status = ? WHERE number = ?`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository returns an OrderRepository using db.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts o and assigns its Number.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.Customer == nil {
		return order.ErrMissingCustomer
	}
	res, err := r.db.ExecContext(ctx, createOrderSQL,
		o.PlacedAt.UTC().Format(time.RFC3339Nano), o.Customer.Identity().ID, string(o.Status),
	)
	if err != nil {
		return errors.Wrap(err, "create order")
	}
	number, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "order number")
	}
	o.Number = number
	return nil
}

// Get returns the order with its customer and without line items.
func (r *OrderRepository) Get(ctx context.Context, number int64) (*order.Order, error) {
	var (
		placedAt string
		status   string
		p        customer.Profile
		kind     string
		fee      decimal.Decimal
		discount decimal.Decimal
	)
	err := r.db.QueryRowContext(ctx, getOrderSQL, number).Scan(
		&number, &placedAt, &status,
		&p.ID, &kind, &p.Name, &p.Address, &p.TaxID, &p.Email, &fee, &discount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", number)
	}

	ts, err := time.Parse(time.RFC3339Nano, placedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse placed_at of order %d", number)
	}
	st, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	c, err := customer.Restore(customer.Kind(kind), p, fee, discount)
	if err != nil {
		return nil, err
	}
	return order.New(number, ts, c, nil, st), nil
}

// UpdateStatus overwrites the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number int64, status order.Status) error {
	res, err := r.db.ExecContext(ctx, updateOrderStatusSQL, string(status), number)
	if err != nil {
		return errors.Wrapf(err, "update order %d status", number)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}
