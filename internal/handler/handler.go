// Package handler exposes the customer and order service over HTTP/JSON.
package handler

import (
	"net/http"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// Handler serves the JSON API on top of the order service and the customer
// repository.
type Handler struct {
	customers customer.Repository
	orders    *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(customers customer.Repository, orders *order.Service) *Handler {
	return &Handler{
		customers: customers,
		orders:    orders,
	}
}

// Register installs the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/customers", h.CreateCustomer)
	mux.HandleFunc("GET /api/customers/{taxId}", h.GetCustomer)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{number}", h.GetOrder)
	mux.HandleFunc("GET /api/orders/{number}/receipt", h.GetReceipt)
	mux.HandleFunc("POST /api/orders/{number}/items", h.AddLineItem)
	mux.HandleFunc("POST /api/orders/{number}/ship", h.ShipOrder)
}
