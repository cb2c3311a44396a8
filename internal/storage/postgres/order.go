package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (placed_at, customer_id, status)
		VALUES ($1, $2, $3)
		RETURNING number`

	getOrderSQL = `SELECT o.number, o.placed_at, o.status,
			c.id, c.kind, c.name, c.address, c.tax_id, c.email, c.annual_fee, c.shipping_discount
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.number = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE number = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE number = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts o and assigns its Number. The customer must already be
// persisted. In-memory line items are not written.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.Customer == nil {
		return order.ErrMissingCustomer
	}
	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.PlacedAt, o.Customer.Identity().ID, string(o.Status),
	).Scan(&o.Number)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// Get returns the order with its customer and without line items.
func (r *OrderRepository) Get(ctx context.Context, number int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, number)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", number, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", number, err)
	}
	return o, nil
}

// UpdateStatus overwrites the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, number, string(status))
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order; its line items are removed by the cascade.
func (r *OrderRepository) Delete(ctx context.Context, number int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, number)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var (
		number   int64
		placedAt time.Time
		status   string
		p        customer.Profile
		kind     string
		fee      decimal.Decimal
		discount decimal.Decimal
	)
	err := row.Scan(
		&number, &placedAt, &status,
		&p.ID, &kind, &p.Name, &p.Address, &p.TaxID, &p.Email, &fee, &discount,
	)
	if err != nil {
		return nil, err
	}

	st, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	c, err := customer.Restore(customer.Kind(kind), p, fee, discount)
	if err != nil {
		return nil, err
	}
	return order.New(number, placedAt, c, nil, st), nil
}
