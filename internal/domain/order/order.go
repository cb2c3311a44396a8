package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

// Status is the shipping state of an order.
type Status string

const (
	// StatusPending is the initial state of a placed order.
	StatusPending Status = "PENDING"
	// StatusShipped is terminal; no transition leaves it.
	StatusShipped Status = "SHIPPED"
)

// Sentinel errors for order operations.
var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyItems        = errors.New("items required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingCustomer   = errors.New("order has no customer")
	ErrMissingTimestamp  = errors.New("order has no timestamp")
)

// InvalidStatusError indicates an unknown status value.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Value)
}

// ParseStatus converts a stored status label to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusShipped:
		return st, nil
	default:
		return "", &InvalidStatusError{Value: s}
	}
}

// Order is the aggregate root: one customer and the line items bought.
//
// Items is an in-memory working set only. TotalPrice and Render always ask
// a LineItemFinder for the persisted items, so items appended here and not
// yet stored do not count.
type Order struct {
	Number   int64
	PlacedAt time.Time
	Customer customer.Customer
	Status   Status
	Items    []LineItem
}

// New assembles an order from its parts. No validation is performed.
func New(number int64, placedAt time.Time, c customer.Customer, items []LineItem, status Status) *Order {
	if items == nil {
		items = []LineItem{}
	}
	return &Order{
		Number:   number,
		PlacedAt: placedAt,
		Customer: c,
		Status:   status,
		Items:    items,
	}
}

// AppendLineItem adds item to the in-memory sequence. It neither persists
// the item nor affects TotalPrice.
func (o *Order) AppendLineItem(item LineItem) {
	item.OrderNumber = o.Number
	o.Items = append(o.Items, item)
}

// Ship moves a pending order to shipped.
func (o *Order) Ship() error {
	if o.Status != StatusPending {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, StatusShipped)
	}
	o.Status = StatusShipped
	return nil
}

// TotalPrice sums salePrice × quantity over the line items the finder
// returns for this order. An order without stored items totals zero.
func (o *Order) TotalPrice(ctx context.Context, items LineItemFinder) (decimal.Decimal, error) {
	stored, err := items.FindByOrder(ctx, o)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "find line items")
	}
	return Sum(stored), nil
}

// Sum returns Σ salePrice × quantity over items.
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
