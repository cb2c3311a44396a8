package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
	"github.com/xenking/nextgen-orders/internal/storage/memory"
)

type testServer struct {
	mux   *http.ServeMux
	items *memory.LineItemRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	customers := memory.NewCustomerRepository()
	items := memory.NewLineItemRepository()
	svc, err := order.NewService(customers, memory.NewOrderRepository(), items)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(customers, svc).Register(mux)
	return &testServer{mux: mux, items: items}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, httptest.NewRequest(method, path, rd))
	return w
}

// fields decodes a flat JSON object into its raw values.
func fields(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	out := map[string]string{}
	err := jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		out[key] = strings.Trim(raw.String(), `"`)
		return nil
	})
	require.NoError(t, err, w.Body.String())
	return out
}

const premiumBody = `{
	"kind": "premium",
	"name": "Ada",
	"address": "1 Loop St",
	"taxId": "P-1",
	"email": "ada@example.com",
	"annualFee": "120",
	"shippingDiscount": 0.15
}`

func TestCreateCustomer(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/customers", premiumBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := fields(t, w)
	assert.Equal(t, "1", got["id"])
	assert.Equal(t, "Premium", got["tier"])
	assert.Equal(t, "120.00", got["annualFee"])
	assert.Equal(t, "0.15", got["shippingDiscount"])

	w = s.do(t, http.MethodPost, "/api/customers", premiumBody)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/customers/P-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", fields(t, w)["email"])
}

func TestCreateCustomer_DefaultsToStandard(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/customers", `{"name":"Bob","taxId":"S-1","annualFee":"50"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	got := fields(t, w)
	assert.Equal(t, "standard", got["kind"])
	assert.Equal(t, "Standard", got["tier"])
	assert.Equal(t, "0.00", got["annualFee"])
}

func TestCreateCustomer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"taxId":`, http.StatusBadRequest},
		{"missing tax id", `{"name":"x"}`, http.StatusBadRequest},
		{"bad decimal", `{"taxId":"X","annualFee":true}`, http.StatusBadRequest},
		{"unknown kind", `{"taxId":"X","kind":"gold"}`, http.StatusUnprocessableEntity},
		{"negative fee", `{"taxId":"X","kind":"premium","annualFee":"-1"}`, http.StatusUnprocessableEntity},
		{"discount above one", `{"taxId":"X","kind":"premium","shippingDiscount":"1.5"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestServer(t).do(t, http.MethodPost, "/api/customers", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	w := newTestServer(t).do(t, http.MethodGet, "/api/customers/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404", fields(t, w)["code"])
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers", premiumBody).Code)

	w := s.do(t, http.MethodPost, "/api/orders", `{
		"taxId": "P-1",
		"items": [
			{"articleCode": "A-1", "salePrice": "10.50", "quantity": 2},
			{"articleCode": "B-2", "salePrice": 4.5, "quantity": 1}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := fields(t, w)
	assert.Equal(t, "1", got["number"])
	assert.Equal(t, "PENDING", got["status"])
	assert.Equal(t, "25.50", got["total"])

	w = s.do(t, http.MethodPost, "/api/orders/1/items", `{"articleCode":"C-3","salePrice":"1.25","quantity":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "5.00", fields(t, w)["subtotal"])

	w = s.do(t, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30.50", fields(t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/orders/1/receipt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Customer: P-1")
	assert.Contains(t, lines[0], "Total: 30.50€")

	w = s.do(t, http.MethodPost, "/api/orders/1/ship", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SHIPPED", fields(t, w)["status"])

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/orders/1/ship", "").Code)
	assert.Equal(t, http.StatusConflict,
		s.do(t, http.MethodPost, "/api/orders/1/items", `{"articleCode":"D","salePrice":"1","quantity":1}`).Code)
}

func TestTotalFollowsStoredItems(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers", premiumBody).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders",
		`{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"2","quantity":1}]}`).Code)

	// Written behind the service's back.
	require.NoError(t, s.items.Add(context.Background(), &order.LineItem{
		OrderNumber: 1, ArticleCode: "X", SalePrice: decimal.RequireFromString("1"), Quantity: 3,
	}))
	require.NoError(t, s.items.Add(context.Background(), &order.LineItem{
		OrderNumber: 1, ArticleCode: "Y", SalePrice: decimal.RequireFromString("0.333"), Quantity: 3,
	}))

	w := s.do(t, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6.00", fields(t, w)["total"])
}

func TestPlaceOrder_Errors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers", premiumBody).Code)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"no items", `{"taxId":"P-1","items":[]}`, http.StatusBadRequest},
		{"zero quantity", `{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"1","quantity":0}]}`, http.StatusUnprocessableEntity},
		{"negative price", `{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"-1","quantity":1}]}`, http.StatusUnprocessableEntity},
		{"unknown customer", `{"taxId":"nobody","items":[{"articleCode":"A","salePrice":"1","quantity":1}]}`, http.StatusUnprocessableEntity},
		{"malformed", `{"items":[{]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestOrderPaths_InvalidNumber(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders/0/receipt", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/42", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/orders/42/ship", "").Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request", &requestError{err: errors.New("bad json")}, http.StatusBadRequest},
		{"empty items", order.ErrEmptyItems, http.StatusBadRequest},
		{"customer not found", errors.Wrap(customer.ErrNotFound, "get"), http.StatusNotFound},
		{"order not found", errors.Wrap(order.ErrNotFound, "get"), http.StatusNotFound},
		{"duplicate tax id", customer.ErrDuplicateTaxID, http.StatusConflict},
		{"invalid transition", order.ErrInvalidTransition, http.StatusConflict},
		{"invalid line item", &order.InvalidLineItemError{ArticleCode: "A", Reason: "x"}, http.StatusUnprocessableEntity},
		{"invalid fee", customer.ErrInvalidAnnualFee, http.StatusUnprocessableEntity},
		{"corrupt stored status", errors.Wrap(&order.InvalidStatusError{Value: "LOST"}, "scan order"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestDecodeLineItem(t *testing.T) {
	li, err := decodeLineItem(jx.DecodeStr(`{"articleCode":"A-1","salePrice":"10.50","quantity":2,"note":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "A-1", li.ArticleCode)
	assert.Equal(t, "10.50", li.SalePrice.StringFixed(2))
	assert.Equal(t, 2, li.Quantity)

	_, err = decodeLineItem(jx.DecodeStr(`{"quantity":"two"}`))
	assert.ErrorContains(t, err, "quantity")
}

func TestCreateCustomerRequest_Decode(t *testing.T) {
	var req createCustomerRequest
	err := jx.DecodeStr(`{"kind":"premium","name":"Ada","taxId":"P-1","annualFee":"1.50","shippingDiscount":0.25}`).Obj(req.decode)
	require.NoError(t, err)
	assert.Equal(t, "premium", req.Kind)
	assert.Equal(t, "Ada", req.Profile.Name)
	assert.Equal(t, "P-1", req.Profile.TaxID)
	assert.Equal(t, "1.5", req.AnnualFee.String())
	assert.Equal(t, "0.25", req.ShippingDiscount.String())
}

func TestOutOfRangeAmountsRejected(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers", premiumBody).Code)

	for _, body := range []string{
		`{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"1e20000000","quantity":1}]}`,
		`{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"10.125","quantity":1}]}`,
		`{"taxId":"P-1","items":[{"articleCode":"A","salePrice":"1","quantity":2147483648}]}`,
	} {
		w := s.do(t, http.MethodPost, "/api/orders", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}

	w := s.do(t, http.MethodPost, "/api/customers", `{"kind":"premium","taxId":"P-2","annualFee":"10.125"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = s.do(t, http.MethodPost, "/api/customers", `{"kind":"premium","taxId":"P-3","shippingDiscount":"0.12345"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
