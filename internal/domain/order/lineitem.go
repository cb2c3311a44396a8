package order

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/money"
)

// MaxQuantity is the largest quantity a line item may carry.
const MaxQuantity = math.MaxInt32

// LineItem is one product line of an order. SalePrice is the unit price at
// the time of sale, not the current catalog price.
type LineItem struct {
	ID          int64
	OrderNumber int64
	ArticleCode string
	SalePrice   decimal.Decimal
	Quantity    int
}

// InvalidLineItemError indicates a line item whose price or quantity is out
// of range.
type InvalidLineItemError struct {
	ArticleCode string
	Reason      string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %s: %s", e.ArticleCode, e.Reason)
}

// Validate reports whether the item can be persisted.
func (li LineItem) Validate() error {
	if li.SalePrice.IsNegative() {
		return &InvalidLineItemError{ArticleCode: li.ArticleCode, Reason: "sale price must not be negative"}
	}
	if !money.IsAmount(li.SalePrice) {
		return &InvalidLineItemError{ArticleCode: li.ArticleCode, Reason: "sale price must have at most 2 decimals and be below 10^10"}
	}
	if li.Quantity <= 0 {
		return &InvalidLineItemError{ArticleCode: li.ArticleCode, Reason: "quantity must be greater than 0"}
	}
	if li.Quantity > MaxQuantity {
		return &InvalidLineItemError{ArticleCode: li.ArticleCode, Reason: fmt.Sprintf("quantity must not exceed %d", MaxQuantity)}
	}
	return nil
}

// Subtotal returns salePrice × quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.SalePrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) String() string {
	return fmt.Sprintf("Article: %-10s | Qty: %-4d | Unit: %9s€ | Subtotal: %10s€",
		li.ArticleCode, li.Quantity, li.SalePrice.StringFixed(2), li.Subtotal().StringFixed(2))
}

// LineItemFinder returns the line items currently stored for an order.
type LineItemFinder interface {
	FindByOrder(ctx context.Context, o *Order) ([]LineItem, error)
}

// LineItemRepository defines persistence operations for line items.
type LineItemRepository interface {
	LineItemFinder
	// Add persists item under its OrderNumber and assigns its ID.
	Add(ctx context.Context, item *LineItem) error
}

// Repository defines persistence operations for orders. Loaded orders carry
// their customer but no line items.
type Repository interface {
	// Create persists o and assigns its Number.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, number int64) (*Order, error)
	UpdateStatus(ctx context.Context, number int64, status Status) error
}
