package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

const (
	customerColumns = `id, kind, name, address, tax_id, email, annual_fee, shipping_discount`

	createCustomerSQL = `INSERT INTO customers (kind, name, address, tax_id, email, annual_fee, shipping_discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	upsertCustomerSQL = `INSERT INTO customers (kind, name, address, tax_id, email, annual_fee, shipping_discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tax_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			email = EXCLUDED.email,
			annual_fee = EXCLUDED.annual_fee,
			shipping_discount = EXCLUDED.shipping_discount
		RETURNING id`

	getCustomerByIDSQL    = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	getCustomerByTaxIDSQL = `SELECT ` + customerColumns + ` FROM customers WHERE tax_id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts c and assigns its ID. Returns customer.ErrDuplicateTaxID
// when the tax id is already registered.
func (r *CustomerRepository) Create(ctx context.Context, c customer.Customer) error {
	p := c.Identity()
	err := r.pool.QueryRow(ctx, createCustomerSQL,
		string(c.Kind()), p.Name, p.Address, p.TaxID, p.Email, c.AnnualFee(), c.ShippingDiscount(),
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrDuplicateTaxID
		}
		return fmt.Errorf("creating customer %q: %w", p.TaxID, err)
	}
	return nil
}

// Upsert inserts c or overwrites the customer with the same tax id, and
// assigns the resulting ID.
func (r *CustomerRepository) Upsert(ctx context.Context, c customer.Customer) error {
	p := c.Identity()
	err := r.pool.QueryRow(ctx, upsertCustomerSQL,
		string(c.Kind()), p.Name, p.Address, p.TaxID, p.Email, c.AnnualFee(), c.ShippingDiscount(),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upserting customer %q: %w", p.TaxID, err)
	}
	return nil
}

// GetByID returns the customer with the given id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return collectCustomer(rows)
}

// GetByTaxID returns the customer with the given tax id.
func (r *CustomerRepository) GetByTaxID(ctx context.Context, taxID string) (customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByTaxIDSQL, taxID)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", taxID, err)
	}
	return collectCustomer(rows)
}

func collectCustomer(rows pgx.Rows) (customer.Customer, error) {
	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var (
		p        customer.Profile
		kind     string
		fee      decimal.Decimal
		discount decimal.Decimal
	)
	if err := row.Scan(&p.ID, &kind, &p.Name, &p.Address, &p.TaxID, &p.Email, &fee, &discount); err != nil {
		return nil, err
	}
	return customer.Restore(customer.Kind(kind), p, fee, discount)
}
