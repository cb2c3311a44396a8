package customer

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/money"
)

var _ Customer = (*Premium)(nil)

// Premium is a paying member. The annual fee and the shipping discount rate
// are stored per customer and may be changed independently.
type Premium struct {
	Profile

	annualFee        decimal.Decimal
	shippingDiscount decimal.Decimal
}

// NewPremium returns a Premium customer after validating the fee and the
// discount rate.
func NewPremium(p Profile, annualFee, shippingDiscount decimal.Decimal) (*Premium, error) {
	c := &Premium{Profile: p}
	if err := c.SetAnnualFee(annualFee); err != nil {
		return nil, err
	}
	if err := c.SetShippingDiscountRate(shippingDiscount); err != nil {
		return nil, err
	}
	return c, nil
}

func (*Premium) Kind() Kind        { return KindPremium }
func (*Premium) TierLabel() string { return "Premium" }

// AnnualFee returns the stored membership fee.
func (c *Premium) AnnualFee() decimal.Decimal { return c.annualFee }

// ShippingDiscount returns the stored discount rate.
func (c *Premium) ShippingDiscount() decimal.Decimal { return c.shippingDiscount }

// SetAnnualFee replaces the membership fee. The fee is an amount with at
// most two decimals.
func (c *Premium) SetAnnualFee(fee decimal.Decimal) error {
	if !money.IsAmount(fee) {
		return ErrInvalidAnnualFee
	}
	c.annualFee = fee
	return nil
}

// SetShippingDiscountRate replaces the discount rate. A rate of 0.15 means
// 15% off shipping. At most four decimals are accepted.
func (c *Premium) SetShippingDiscountRate(rate decimal.Decimal) error {
	if rate.IsNegative() ||
		!money.Fits(rate, money.RatePrecision, money.RateScale) ||
		rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidShippingDiscount
	}
	c.shippingDiscount = rate
	return nil
}

func (c *Premium) String() string {
	return c.Profile.String() + " (Premium)"
}
