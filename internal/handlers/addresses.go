package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/platform/httpx"
	"github.com/swapnil12348/gocart/internal/services"
)

// AddressHandlers exposes the shopper's address book.
type AddressHandlers struct {
	authn     *auth.Authenticator
	addresses services.AddressService
}

const maxAddressBodySize = 8 * 1024

// NewAddressHandlers constructs handlers enforcing Firebase authentication
// before invoking the address service.
func NewAddressHandlers(authn *auth.Authenticator, addresses services.AddressService) *AddressHandlers {
	return &AddressHandlers{
		authn:     authn,
		addresses: addresses,
	}
}

// Routes wires the /me/addresses endpoints onto the provided router.
func (h *AddressHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listAddresses)
	r.Post("/", h.addAddress)
}

type addAddressRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZIP     string `json:"zip,omitempty"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

func (h *AddressHandlers) listAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.addresses == nil {
		httpx.WriteError(ctx, w, httpx.NewError("address_service_unavailable", "address service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	addresses, err := h.addresses.ListAddresses(ctx, shopper)
	if err != nil {
		h.writeAddressError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *AddressHandlers) addAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.addresses == nil {
		httpx.WriteError(ctx, w, httpx.NewError("address_service_unavailable", "address service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxAddressBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var req addAddressRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	address, err := h.addresses.AddAddress(ctx, services.AddAddressCommand{
		Shopper: shopper,
		Name:    req.Name,
		Email:   req.Email,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZIP:     req.ZIP,
		Country: req.Country,
		Phone:   req.Phone,
	})
	if err != nil {
		h.writeAddressError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"address": address})
}

func (h *AddressHandlers) writeAddressError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAddressInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "name, street, city and country are required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("address_error", "failed to process address", http.StatusInternalServerError))
	}
}
