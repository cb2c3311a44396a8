package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

// TimestampLayout is dd-MM-yyyy HH:mm:ss.
const TimestampLayout = "02-01-2006 15:04:05"

// Currency is appended to every rendered amount.
const Currency = "€"

// Render produces a multi-line summary of the order followed by one line per
// stored line item. The items are fetched once and the total is computed
// from that same result.
func (o *Order) Render(ctx context.Context, items LineItemFinder) (string, error) {
	if customer.IsNil(o.Customer) {
		return "", ErrMissingCustomer
	}
	if o.PlacedAt.IsZero() {
		return "", ErrMissingTimestamp
	}

	stored, err := items.FindByOrder(ctx, o)
	if err != nil {
		return "", errors.Wrap(err, "find line items")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order No: %-5d| Date: %s | Customer: %-10s | Status: %-8s | Total: %s%s\n",
		o.Number,
		o.PlacedAt.Format(TimestampLayout),
		o.Customer.Identity().TaxID,
		o.Status,
		Sum(stored).StringFixed(2),
		Currency,
	)
	b.WriteString("Order lines:\n")
	for _, it := range stored {
		b.WriteString(it.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}
