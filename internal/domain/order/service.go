package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

const instrumentationName = "github.com/xenking/nextgen-orders/internal/domain/order"

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	TaxID string
	Items []LineItem
}

// Summary is an order together with the stored line items and their total,
// all taken from a single lookup.
type Summary struct {
	Order *Order
	Items []LineItem
	Total decimal.Decimal
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider sets the tracer provider used for service spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the meter provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meter = mp.Meter(instrumentationName) }
}

// Service encapsulates order business logic on top of the repositories.
type Service struct {
	customers customer.Repository
	orders    Repository
	items     LineItemRepository
	now       func() time.Time

	tracer  trace.Tracer
	meter   metric.Meter
	placed  metric.Int64Counter
	shipped metric.Int64Counter
}

// NewService creates an order Service with the required repositories.
func NewService(
	customers customer.Repository,
	orders Repository,
	items LineItemRepository,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		customers: customers,
		orders:    orders,
		items:     items,
		now:       time.Now,
		tracer:    tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:     metricnoop.NewMeterProvider().Meter(instrumentationName),
	}
	for _, o := range opts {
		o(s)
	}

	var err error
	if s.placed, err = s.meter.Int64Counter("orders.placed",
		metric.WithDescription("Number of orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	if s.shipped, err = s.meter.Int64Counter("orders.shipped",
		metric.WithDescription("Number of orders shipped"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.shipped counter")
	}
	return s, nil
}

// PlaceOrder validates items, resolves the customer by tax id, and persists a
// pending order with its line items.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.items", len(req.Items))),
	)
	defer func() { endSpan(span, rerr) }()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range req.Items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
	}

	c, err := s.customers.GetByTaxID(ctx, req.TaxID)
	if err != nil {
		return nil, errors.Wrap(err, "get customer")
	}

	o := New(0, s.now().UTC().Truncate(time.Second), c, nil, StatusPending)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	span.SetAttributes(attribute.Int64("order.number", o.Number))

	for _, it := range req.Items {
		it.OrderNumber = o.Number
		if err := s.items.Add(ctx, &it); err != nil {
			return nil, errors.Wrapf(err, "add line item %s", it.ArticleCode)
		}
		o.AppendLineItem(it)
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("customer.tier", c.TierLabel())))
	return o, nil
}

// Get loads an order without its line items.
func (s *Service) Get(ctx context.Context, number int64) (*Order, error) {
	o, err := s.orders.Get(ctx, number)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", number)
	}
	return o, nil
}

// AddLineItem validates and persists a new line item for an existing order.
func (s *Service) AddLineItem(ctx context.Context, number int64, item LineItem) (_ *LineItem, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.AddLineItem",
		trace.WithAttributes(attribute.Int64("order.number", number)),
	)
	defer func() { endSpan(span, rerr) }()

	if err := item.Validate(); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, errors.Wrapf(ErrInvalidTransition, "add item to %s order", o.Status)
	}

	item.OrderNumber = o.Number
	if err := s.items.Add(ctx, &item); err != nil {
		return nil, errors.Wrapf(err, "add line item %s", item.ArticleCode)
	}
	return &item, nil
}

// Ship moves the order to shipped and persists the new status.
func (s *Service) Ship(ctx context.Context, number int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Ship",
		trace.WithAttributes(attribute.Int64("order.number", number)),
	)
	defer func() { endSpan(span, rerr) }()

	o, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := o.Ship(); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o.Number, o.Status); err != nil {
		return nil, errors.Wrapf(err, "update order %d status", number)
	}

	s.shipped.Add(ctx, 1)
	return o, nil
}

// Total returns the total price of the stored line items of an order.
func (s *Service) Total(ctx context.Context, number int64) (decimal.Decimal, error) {
	o, err := s.Get(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}
	return o.TotalPrice(ctx, s.items)
}

// Summary returns the order, its stored items and their total.
func (s *Service) Summary(ctx context.Context, number int64) (_ *Summary, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Summary",
		trace.WithAttributes(attribute.Int64("order.number", number)),
	)
	defer func() { endSpan(span, rerr) }()

	o, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FindByOrder(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "find line items")
	}
	return &Summary{Order: o, Items: items, Total: Sum(items)}, nil
}

// Receipt returns the rendered text of an order.
func (s *Service) Receipt(ctx context.Context, number int64) (string, error) {
	o, err := s.Get(ctx, number)
	if err != nil {
		return "", err
	}
	return o.Render(ctx, s.items)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
