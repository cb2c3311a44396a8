package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/order"
)

const (
	addLineItemSQL = `INSERT INTO line_items (order_number, article_code, sale_price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	listLineItemsByOrderSQL = `SELECT id, order_number, article_code, sale_price, quantity
		FROM line_items WHERE order_number = $1 ORDER BY id`
)

var _ order.LineItemRepository = (*LineItemRepository)(nil)

// LineItemRepository implements order.LineItemRepository backed by PostgreSQL.
type LineItemRepository struct {
	pool *pgxpool.Pool
}

// NewLineItemRepository returns a LineItemRepository that uses the given pool.
func NewLineItemRepository(pool *pgxpool.Pool) *LineItemRepository {
	return &LineItemRepository{pool: pool}
}

// Add inserts item and assigns its ID.
func (r *LineItemRepository) Add(ctx context.Context, item *order.LineItem) error {
	err := r.pool.QueryRow(ctx, addLineItemSQL,
		item.OrderNumber, item.ArticleCode, item.SalePrice, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("adding line item to order %d: %w", item.OrderNumber, err)
	}
	return nil
}

// FindByOrder returns the stored line items of o ordered by ID.
func (r *LineItemRepository) FindByOrder(ctx context.Context, o *order.Order) ([]order.LineItem, error) {
	rows, err := r.pool.Query(ctx, listLineItemsByOrderSQL, o.Number)
	if err != nil {
		return nil, fmt.Errorf("listing line items of order %d: %w", o.Number, err)
	}
	return pgx.CollectRows(rows, scanLineItem)
}

func scanLineItem(row pgx.CollectableRow) (order.LineItem, error) {
	var (
		li       order.LineItem
		price    decimal.Decimal
		quantity int32
	)
	err := row.Scan(&li.ID, &li.OrderNumber, &li.ArticleCode, &price, &quantity)
	li.SalePrice = price
	li.Quantity = int(quantity)
	return li, err
}
