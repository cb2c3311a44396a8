package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

func decodeLineItem(d *jx.Decoder) (order.LineItem, error) {
	var li order.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "articleCode":
			li.ArticleCode, err = d.Str()
		case "salePrice":
			li.SalePrice, err = decodeDecimal(d)
		case "quantity":
			li.Quantity, err = d.Int()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return li, err
}

// PlaceOrder handles POST /api/orders and responds with the stored summary.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceOrderRequest
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "taxId":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, key)
			}
			req.TaxID = s
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				li, err := decodeLineItem(d)
				if err != nil {
					return errors.Wrap(err, "items")
				}
				req.Items = append(req.Items, li)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeErrorStatus(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusCreated, o.Number)
}

// GetOrder handles GET /api/orders/{number}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusOK, number)
}

// GetReceipt handles GET /api/orders/{number}/receipt with the plain-text
// rendering of the order.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	text, err := h.orders.Receipt(r.Context(), number)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// AddLineItem handles POST /api/orders/{number}/items.
func (h *Handler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	li, err := decodeLineItem(jx.Decode(body, 4096))
	if err != nil {
		writeError(w, r, badRequest(err, "decode body"))
		return
	}

	stored, err := h.orders.AddLineItem(r.Context(), number, li)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeLineItem(e, *stored) })
}

// ShipOrder handles POST /api/orders/{number}/ship.
func (h *Handler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.orders.Ship(r.Context(), number); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusOK, number)
}

func (h *Handler) writeSummary(w http.ResponseWriter, r *http.Request, code int, number int64) {
	s, err := h.orders.Summary(r.Context(), number)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, func(e *jx.Encoder) { encodeSummary(e, s) })
}

func encodeSummary(e *jx.Encoder, s *order.Summary) {
	o := s.Order
	e.Obj(func(e *jx.Encoder) {
		e.Field("number", func(e *jx.Encoder) { e.Int64(o.Number) })
		e.Field("placedAt", func(e *jx.Encoder) { e.Str(o.PlacedAt.Format(time.RFC3339)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		if o.Customer != nil {
			e.Field("customer", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("taxId", func(e *jx.Encoder) { e.Str(o.Customer.Identity().TaxID) })
					e.Field("tier", func(e *jx.Encoder) { e.Str(o.Customer.TierLabel()) })
				})
			})
		}
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range s.Items {
					encodeLineItem(e, li)
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Str(money(s.Total)) })
		e.Field("currency", func(e *jx.Encoder) { e.Str("EUR") })
	})
}

func encodeLineItem(e *jx.Encoder, li order.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(li.ID) })
		e.Field("orderNumber", func(e *jx.Encoder) { e.Int64(li.OrderNumber) })
		e.Field("articleCode", func(e *jx.Encoder) { e.Str(li.ArticleCode) })
		e.Field("salePrice", func(e *jx.Encoder) { e.Str(money(li.SalePrice)) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(li.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(money(li.Subtotal())) })
	})
}
