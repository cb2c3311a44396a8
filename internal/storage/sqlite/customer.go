package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (kind, name, address, tax_id, email, annual_fee, shipping_discount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectCustomerSQL = `SELECT id, kind, name, address, tax_id, email, annual_fee, shipping_discount
		FROM customers`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository on SQLite.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository returns a CustomerRepository using db.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts c and assigns its ID.
func (r *CustomerRepository) Create(ctx context.Context, c customer.Customer) error {
	p := c.Identity()
	res, err := r.db.ExecContext(ctx, createCustomerSQL,
		string(c.Kind()), p.Name, p.Address, p.TaxID, p.Email,
		c.AnnualFee().String(), c.ShippingDiscount().String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrDuplicateTaxID
		}
		return errors.Wrapf(err, "create customer %q", p.TaxID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "customer id")
	}
	p.ID = id
	return nil
}

// GetByID returns the customer with the given id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (customer.Customer, error) {
	row := r.db.QueryRowContext(ctx, selectCustomerSQL+` WHERE id = ?`, id)
	return scanCustomer(row)
}

// GetByTaxID returns the customer with the given tax id.
func (r *CustomerRepository) GetByTaxID(ctx context.Context, taxID string) (customer.Customer, error) {
	row := r.db.QueryRowContext(ctx, selectCustomerSQL+` WHERE tax_id = ?`, taxID)
	return scanCustomer(row)
}

func scanCustomer(row *sql.Row) (customer.Customer, error) {
	var (
		p        customer.Profile
		kind     string
		fee      decimal.Decimal
		discount decimal.Decimal
	)
	err := row.Scan(&p.ID, &kind, &p.Name, &p.Address, &p.TaxID, &p.Email, &fee, &discount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan customer")
	}
	return customer.Restore(customer.Kind(kind), p, fee, discount)
}
