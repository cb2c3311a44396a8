package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/nextgen-orders/internal/domain/customer"
)

type createCustomerRequest struct {
	Kind             string
	Profile          customer.Profile
	AnnualFee        decimal.Decimal
	ShippingDiscount decimal.Decimal
}

func (req *createCustomerRequest) decode(d *jx.Decoder, key string) (err error) {
	switch key {
	case "kind":
		req.Kind, err = d.Str()
	case "name":
		req.Profile.Name, err = d.Str()
	case "address":
		req.Profile.Address, err = d.Str()
	case "taxId":
		req.Profile.TaxID, err = d.Str()
	case "email":
		req.Profile.Email, err = d.Str()
	case "annualFee":
		req.AnnualFee, err = decodeDecimal(d)
	case "shippingDiscount":
		req.ShippingDiscount, err = decodeDecimal(d)
	default:
		return d.Skip()
	}
	if err != nil {
		return errors.Wrap(err, key)
	}
	return nil
}

func (req *createCustomerRequest) build() (customer.Customer, error) {
	if req.Profile.TaxID == "" {
		return nil, &requestError{err: errors.New("taxId is required")}
	}
	kind := customer.KindStandard
	if req.Kind != "" {
		k, err := customer.ParseKind(req.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	if kind == customer.KindStandard {
		return customer.NewStandard(req.Profile), nil
	}
	c, err := customer.NewPremium(req.Profile, req.AnnualFee, req.ShippingDiscount)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeObject(w, r, req.decode); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := req.build()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.customers.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

// GetCustomer handles GET /api/customers/{taxId}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetByTaxID(r.Context(), r.PathValue("taxId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

func encodeCustomer(e *jx.Encoder, c customer.Customer) {
	p := c.Identity()
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(c.Kind())) })
		e.Field("tier", func(e *jx.Encoder) { e.Str(c.TierLabel()) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("address", func(e *jx.Encoder) { e.Str(p.Address) })
		e.Field("taxId", func(e *jx.Encoder) { e.Str(p.TaxID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(p.Email) })
		e.Field("annualFee", func(e *jx.Encoder) { e.Str(money(c.AnnualFee())) })
		e.Field("shippingDiscount", func(e *jx.Encoder) { e.Str(c.ShippingDiscount().String()) })
	})
}
