package customer

import "github.com/shopspring/decimal"

var _ Customer = (*Standard)(nil)

// Standard is a customer without membership: no fee and no shipping discount.
type Standard struct {
	Profile
}

// NewStandard returns a Standard customer with the given profile.
func NewStandard(p Profile) *Standard {
	return &Standard{Profile: p}
}

func (*Standard) Kind() Kind                        { return KindStandard }
func (*Standard) TierLabel() string                 { return "Standard" }
func (*Standard) AnnualFee() decimal.Decimal        { return decimal.Zero }
func (*Standard) ShippingDiscount() decimal.Decimal { return decimal.Zero }
