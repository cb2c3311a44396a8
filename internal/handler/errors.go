package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
	"github.com/xenking/nextgen-orders/internal/domain/order"
)

// statusOf maps domain errors to HTTP status codes. Errors caused by stored
// data, such as an unknown order status, are server errors.
func statusOf(err error) int {
	var (
		reqErr  *requestError
		itemErr *order.InvalidLineItemError
	)
	switch {
	case errors.As(err, &reqErr), errors.Is(err, order.ErrEmptyItems):
		return http.StatusBadRequest
	case errors.Is(err, customer.ErrNotFound), errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, customer.ErrDuplicateTaxID), errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &itemErr),
		errors.Is(err, customer.ErrInvalidAnnualFee),
		errors.Is(err, customer.ErrInvalidShippingDiscount),
		errors.Is(err, customer.ErrUnknownKind):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes {"code":N,"message":"..."}. Internal errors are logged
// and their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusOf(err), err)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, code int, err error) {
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		msg = http.StatusText(code)
	}
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}
