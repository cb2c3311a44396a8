package customer

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind discriminates customer variants in storage. It is intentionally
// separate from the human-readable tier label.
type Kind string

const (
	// KindStandard marks a customer without membership benefits.
	KindStandard Kind = "standard"
	// KindPremium marks a paying member with a shipping discount.
	KindPremium Kind = "premium"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicateTaxID is returned when a customer with the same tax id exists.
	ErrDuplicateTaxID = errors.New("customer tax id already registered")
	// ErrInvalidAnnualFee is returned for a negative fee or one that does not
	// fit two decimals below 10^10.
	ErrInvalidAnnualFee = errors.New("annual fee must be a non-negative amount with at most 2 decimals")
	// ErrInvalidShippingDiscount is returned for a rate outside [0, 1] or with
	// more than four decimals.
	ErrInvalidShippingDiscount = errors.New("shipping discount must be a fraction between 0 and 1 with at most 4 decimals")
	// ErrUnknownKind is returned when restoring a customer of an unknown kind.
	ErrUnknownKind = errors.New("unknown customer kind")
)

// Customer is the capability set every customer variant provides.
type Customer interface {
	// Identity returns the shared identity and contact fields.
	Identity() *Profile
	// Kind returns the storage discriminator of the variant.
	Kind() Kind
	// TierLabel returns a decorative, human-readable tier name.
	TierLabel() string
	// AnnualFee returns the yearly membership fee.
	AnnualFee() decimal.Decimal
	// ShippingDiscount returns the shipping discount as a fraction in [0, 1].
	ShippingDiscount() decimal.Decimal

	fmt.Stringer
}

// Profile holds the identity and contact fields shared by all variants.
// ID is zero until the customer is persisted.
type Profile struct {
	ID      int64
	Name    string
	Address string
	TaxID   string
	Email   string
}

// Identity returns p itself so that variants embedding Profile satisfy the
// Customer interface.
func (p *Profile) Identity() *Profile {
	return p
}

func (p *Profile) String() string {
	return fmt.Sprintf("#%d %s | Tax ID: %s | %s | %s", p.ID, p.Name, p.TaxID, p.Email, p.Address)
}

// Repository defines persistence operations for customers.
type Repository interface {
	// Create persists c and assigns its ID.
	Create(ctx context.Context, c Customer) error
	GetByID(ctx context.Context, id int64) (Customer, error)
	GetByTaxID(ctx context.Context, taxID string) (Customer, error)
}

// Restore rebuilds a customer variant from its stored representation.
// Fee and rate are ignored for standard customers.
func Restore(kind Kind, p Profile, annualFee, shippingDiscount decimal.Decimal) (Customer, error) {
	switch kind {
	case KindStandard:
		return &Standard{Profile: p}, nil
	case KindPremium:
		c, err := NewPremium(p, annualFee, shippingDiscount)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "restore %q", kind)
	}
}

// IsNil reports whether c is nil or a nil variant pointer.
func IsNil(c Customer) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *Premium:
		return v == nil
	case *Standard:
		return v == nil
	default:
		return false
	}
}

// ParseKind validates a stored or user-supplied kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindStandard, KindPremium:
		return k, nil
	default:
		return "", errors.Wrapf(ErrUnknownKind, "parse %q", s)
	}
}
