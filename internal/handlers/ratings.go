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

// RatingHandlers exposes product review endpoints for the current user.
type RatingHandlers struct {
	authn   *auth.Authenticator
	ratings services.RatingService
}

const maxRatingBodySize = 8 * 1024

// NewRatingHandlers constructs handlers enforcing Firebase authentication
// before invoking the rating service.
func NewRatingHandlers(authn *auth.Authenticator, ratings services.RatingService) *RatingHandlers {
	return &RatingHandlers{
		authn:   authn,
		ratings: ratings,
	}
}

// Routes wires the /ratings endpoints onto the provided router.
func (h *RatingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.rateProduct)
	r.Get("/", h.listRatings)
}

type rateProductRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Score     int    `json:"score"`
	Review    string `json:"review,omitempty"`
}

func (h *RatingHandlers) rateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.ratings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("rating_service_unavailable", "rating service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxRatingBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var req rateProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	rating, err := h.ratings.RateProduct(ctx, services.RateProductCommand{
		Shopper:   shopper,
		OrderID:   strings.TrimSpace(req.OrderID),
		ProductID: strings.TrimSpace(req.ProductID),
		Score:     req.Score,
		Review:    req.Review,
	})
	if err != nil {
		h.writeRatingError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"rating": rating})
}

// listRatings returns the caller's reviews, or a single product's reviews
// when a productId query parameter is supplied.
func (h *RatingHandlers) listRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.ratings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("rating_service_unavailable", "rating service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	list := func() (any, error) {
		if productID != "" {
			return h.ratings.ListByProduct(ctx, productID)
		}
		return h.ratings.ListByUser(ctx, shopper)
	}

	ratings, err := list()
	if err != nil {
		h.writeRatingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"ratings": ratings})
}

func (h *RatingHandlers) writeRatingError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRatingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrRatingOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrRatingProductNotInOrder):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_in_order", "product was not part of the order", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrRatingConflict):
		httpx.WriteError(ctx, w, httpx.NewError("already_rated", "product already rated for this order", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("rating_error", "failed to process rating", http.StatusInternalServerError))
	}
}
