package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/platform/httpx"
	"github.com/swapnil12348/gocart/internal/services"
)

// OrderHandlers exposes checkout and order history for the current user.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

const maxOrderBodySize = 8 * 1024

// NewOrderHandlers constructs handlers enforcing Firebase authentication
// before invoking the order service.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.placeOrder)
	r.Get("/", h.listOrders)
}

type orderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type placeOrderRequest struct {
	AddressID     string             `json:"addressId"`
	Items         []orderLineRequest `json:"items"`
	PaymentMethod string             `json:"paymentMethod"`
	CouponCode    string             `json:"couponCode,omitempty"`
}

type placeOrderResponse struct {
	OrderIDs   []string `json:"orderIds"`
	TotalMinor int64    `json:"totalMinor"`
	SessionID  string   `json:"sessionId,omitempty"`
	PaymentURL string   `json:"paymentUrl,omitempty"`
}

type orderPayload struct {
	ID            string                `json:"id"`
	StoreID       string                `json:"storeId"`
	Items         []domain.OrderItem    `json:"items"`
	TotalMinor    int64                 `json:"totalMinor"`
	PaymentMethod string                `json:"paymentMethod"`
	IsPaid        bool                  `json:"isPaid"`
	CouponCode    string                `json:"couponCode,omitempty"`
	Coupon        *domain.AppliedCoupon `json:"coupon,omitempty"`
	Status        string                `json:"status"`
	Address       domain.Address        `json:"address"`
	CreatedAt     string                `json:"createdAt,omitempty"`
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	var req placeOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	items := make([]services.OrderLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, services.OrderLineInput{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
		})
	}

	result, err := h.orders.PlaceOrder(ctx, services.PlaceOrderCommand{
		Shopper:       shopper,
		AddressID:     strings.TrimSpace(req.AddressID),
		Items:         items,
		PaymentMethod: domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, placeOrderResponse{
		OrderIDs:   result.OrderIDs,
		TotalMinor: result.TotalMinor,
		SessionID:  result.SessionID,
		PaymentURL: result.PaymentURL,
	})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	shopper, ok := shopperFromContext(r)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	orders, err := h.orders.ListOrders(ctx, shopper)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": payload})
}

func buildOrderPayload(order domain.Order) orderPayload {
	p := orderPayload{
		ID:            order.ID,
		StoreID:       order.StoreID,
		Items:         order.Items,
		TotalMinor:    order.TotalMinor,
		PaymentMethod: string(order.PaymentMethod),
		IsPaid:        order.IsPaid,
		CouponCode:    order.CouponCode,
		Coupon:        order.Coupon,
		Status:        string(order.Status),
		Address:       order.Address,
	}
	if !order.CreatedAt.IsZero() {
		p.CreatedAt = order.CreatedAt.UTC().Format(time.RFC3339)
	}
	return p
}

func (h *OrderHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "no items to purchase", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidAddress):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_address", "shipping address not found", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCouponNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_found", "coupon does not exist or has expired", http.StatusNotFound))
	case errors.Is(err, services.ErrCouponIneligible), errors.Is(err, services.ErrCouponUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_eligible", "coupon requirements not met", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderPaymentFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_session_failed", "failed to start payment session", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order", http.StatusInternalServerError))
	}
}
