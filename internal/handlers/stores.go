package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/platform/httpx"
	"github.com/swapnil12348/gocart/internal/services"
)

// StoreHandlers exposes the public storefront lookup and seller onboarding.
type StoreHandlers struct {
	authn  *auth.Authenticator
	stores services.StoreService
}

const maxStoreBodySize = 16 * 1024

// NewStoreHandlers constructs storefront handlers. The lookup endpoint is
// public; registration and the owner view require authentication.
func NewStoreHandlers(authn *auth.Authenticator, stores services.StoreService) *StoreHandlers {
	return &StoreHandlers{
		authn:  authn,
		stores: stores,
	}
}

// Routes wires the /stores endpoints onto the provided router.
func (h *StoreHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getStorefront)
	r.Group(func(protected chi.Router) {
		if h.authn != nil {
			protected.Use(h.authn.RequireFirebaseAuth())
		}
		protected.Post("/", h.registerStore)
		protected.Get("/mine", h.getOwnStore)
	})
}

type registerStoreRequest struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Address     string `json:"address,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

func (h *StoreHandlers) getStorefront(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.stores == nil {
		httpx.WriteError(ctx, w, httpx.NewError("store_service_unavailable", "store service is unavailable", http.StatusServiceUnavailable))
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "username query parameter is required", http.StatusBadRequest))
		return
	}

	data, err := h.stores.GetStorefront(ctx, username)
	if err != nil {
		h.writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, data)
}

func (h *StoreHandlers) registerStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.stores == nil {
		httpx.WriteError(ctx, w, httpx.NewError("store_service_unavailable", "store service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxStoreBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var req registerStoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	store, err := h.stores.RegisterStore(ctx, services.RegisterStoreCommand{
		Shopper:     shopper,
		Name:        req.Name,
		Username:    req.Username,
		Description: req.Description,
		Email:       req.Email,
		Contact:     req.Contact,
		Address:     req.Address,
		Logo:        req.Logo,
	})
	if err != nil {
		// A repeat registration surfaces the existing application instead
		// of a bare conflict.
		if errors.Is(err, services.ErrStoreAlreadyRegistered) {
			if existing, ownErr := h.stores.GetOwnStore(ctx, shopper); ownErr == nil {
				writeJSONResponse(w, http.StatusOK, map[string]any{"store": existing})
				return
			}
		}
		h.writeStoreError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"store": store})
}

func (h *StoreHandlers) getOwnStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.stores == nil {
		httpx.WriteError(ctx, w, httpx.NewError("store_service_unavailable", "store service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	store, err := h.stores.GetOwnStore(ctx, shopper)
	if err != nil {
		h.writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"store": store})
}

func (h *StoreHandlers) writeStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrStoreInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrStoreNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("store_not_found", "store not found", http.StatusNotFound))
	case errors.Is(err, services.ErrStoreUsernameTaken):
		httpx.WriteError(ctx, w, httpx.NewError("username_taken", "store username is already taken", http.StatusConflict))
	case errors.Is(err, services.ErrStoreAlreadyRegistered):
		httpx.WriteError(ctx, w, httpx.NewError("store_exists", "user already owns a store", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("store_error", "failed to process store request", http.StatusInternalServerError))
	}
}
