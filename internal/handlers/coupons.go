package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/platform/httpx"
	"github.com/swapnil12348/gocart/internal/services"
)

// CouponHandlers exposes coupon validation. Authentication is optional:
// public coupons validate anonymously, audience-restricted ones require a
// signed-in shopper.
type CouponHandlers struct {
	authn   *auth.Authenticator
	coupons services.CouponService
}

const maxCouponBodySize = 4 * 1024

// NewCouponHandlers constructs coupon validation handlers.
func NewCouponHandlers(authn *auth.Authenticator, coupons services.CouponService) *CouponHandlers {
	return &CouponHandlers{
		authn:   authn,
		coupons: coupons,
	}
}

// Routes wires the /coupons endpoints onto the provided router.
func (h *CouponHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.OptionalFirebaseAuth())
	}
	r.Post("/validate", h.validate)
}

type couponResponse struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	DiscountPct int64  `json:"discountPct"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

func (h *CouponHandlers) validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.coupons == nil {
		httpx.WriteError(ctx, w, httpx.NewError("coupon_service_unavailable", "coupon service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCouponBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	shopper, _ := shopperFromContext(r)
	validation, err := h.coupons.Validate(ctx, shopper, req.Code)
	if err != nil {
		h.writeCouponError(ctx, w, err)
		return
	}

	coupon := validation.Coupon
	resp := couponResponse{
		Code:        coupon.Code,
		Description: coupon.Description,
		DiscountPct: coupon.DiscountPct,
	}
	if !coupon.ExpiresAt.IsZero() {
		resp.ExpiresAt = coupon.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *CouponHandlers) writeCouponError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCouponInvalidCode):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "coupon code is required", http.StatusBadRequest))
	case errors.Is(err, services.ErrCouponNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_found", "coupon does not exist or has expired", http.StatusNotFound))
	case errors.Is(err, services.ErrCouponUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in to use this coupon", http.StatusUnauthorized))
	case errors.Is(err, services.ErrCouponIneligible):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_eligible", "coupon requirements not met", http.StatusForbidden))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("coupon_error", "failed to validate coupon", http.StatusInternalServerError))
	}
}
