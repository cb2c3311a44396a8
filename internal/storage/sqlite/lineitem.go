package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/xenking/nextgen-orders/internal/domain/order"
)

const (
	addLineItemSQL = `INSERT INTO line_items (order_number, article_code, sale_price, quantity)
		VALUES (?, ?, ?, ?)`

	listLineItemsByOrderSQL = `SELECT id, order_number, article_code, sale_price, quantity
		FROM line_items WHERE order_number = ? ORDER BY id`
)

var _ order.LineItemRepository = (*LineItemRepository)(nil)

// LineItemRepository implements order.LineItemRepository on SQLite.
type LineItemRepository struct {
	db *sql.DB
}

// NewLineItemRepository returns a LineItemRepository using db.
func NewLineItemRepository(db *sql.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

// Add inserts item and assigns its ID.
func (r *LineItemRepository) Add(ctx context.Context, item *order.LineItem) error {
	res, err := r.db.ExecContext(ctx, addLineItemSQL,
		item.OrderNumber, item.ArticleCode, item.SalePrice.String(), item.Quantity,
	)
	if err != nil {
		return errors.Wrapf(err, "add line item to order %d", item.OrderNumber)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "line item id")
	}
	item.ID = id
	return nil
}

// FindByOrder returns the stored line items of o ordered by ID.
func (r *LineItemRepository) FindByOrder(ctx context.Context, o *order.Order) ([]order.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, listLineItemsByOrderSQL, o.Number)
	if err != nil {
		return nil, errors.Wrapf(err, "list line items of order %d", o.Number)
	}
	defer func() { _ = rows.Close() }()

	var items []order.LineItem
	for rows.Next() {
		var li order.LineItem
		if err := rows.Scan(&li.ID, &li.OrderNumber, &li.ArticleCode, &li.SalePrice, &li.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan line item")
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate line items")
	}
	return items, nil
}
