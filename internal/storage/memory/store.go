// Package memory provides in-memory repositories for local development and
// tests. Stored values are copies; callers cannot mutate them in place.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

var (
	_ customer.Repository      = (*CustomerRepository)(nil)
	_ order.Repository         = (*OrderRepository)(nil)
	_ order.LineItemRepository = (*LineItemRepository)(nil)
)

// CustomerRepository keeps customers keyed by id with a tax id index.
type CustomerRepository struct {
	mu      sync.RWMutex
	next    int64
	byID    map[int64]customer.Customer
	byTaxID map[string]int64
}

// NewCustomerRepository returns an empty CustomerRepository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		byID:    make(map[int64]customer.Customer),
		byTaxID: make(map[string]int64),
	}
}

// Create stores c and assigns its ID. Tax ids are unique.
func (r *CustomerRepository) Create(_ context.Context, c customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := c.Identity()
	if _, exists := r.byTaxID[p.TaxID]; exists {
		return customer.ErrDuplicateTaxID
	}
	r.next++
	p.ID = r.next

	stored, err := clone(c)
	if err != nil {
		return err
	}
	r.byID[p.ID] = stored
	r.byTaxID[p.TaxID] = p.ID
	return nil
}

// GetByID returns a copy of the customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByID(_ context.Context, id int64) (customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return clone(c)
}

// GetByTaxID returns a copy of the customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByTaxID(ctx context.Context, taxID string) (customer.Customer, error) {
	r.mu.RLock()
	id, ok := r.byTaxID[taxID]
	r.mu.RUnlock()
	if !ok {
		return nil, customer.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func clone(c customer.Customer) (customer.Customer, error) {
	return customer.Restore(c.Kind(), *c.Identity(), c.AnnualFee(), c.ShippingDiscount())
}

// OrderRepository keeps orders keyed by number. Line items are not stored
// here; see LineItemRepository.
type OrderRepository struct {
	mu     sync.RWMutex
	next   int64
	orders map[int64]order.Order
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]order.Order)}
}

// Create stores o and assigns its Number.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	o.Number = r.next
	stored := *o
	stored.Items = nil
	r.orders[o.Number] = stored
	return nil
}

// Get returns a copy of the order without line items, or order.ErrNotFound.
func (r *OrderRepository) Get(_ context.Context, number int64) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[number]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

// UpdateStatus overwrites the stored status.
func (r *OrderRepository) UpdateStatus(_ context.Context, number int64, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[number]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	r.orders[number] = o
	return nil
}

// LineItemRepository keeps line items grouped by order number.
type LineItemRepository struct {
	mu      sync.RWMutex
	next    int64
	byOrder map[int64][]order.LineItem
}

// NewLineItemRepository returns an empty LineItemRepository.
func NewLineItemRepository() *LineItemRepository {
	return &LineItemRepository{byOrder: make(map[int64][]order.LineItem)}
}

// Add stores item and assigns its ID.
func (r *LineItemRepository) Add(_ context.Context, item *order.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	item.ID = r.next
	r.byOrder[item.OrderNumber] = append(r.byOrder[item.OrderNumber], *item)
	return nil
}

// FindByOrder returns the items stored for o ordered by ID.
func (r *LineItemRepository) FindByOrder(_ context.Context, o *order.Order) ([]order.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byOrder[o.Number]
	result := make([]order.LineItem, len(stored))
	copy(result, stored)
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
