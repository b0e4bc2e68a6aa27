package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/payments"
	"github.com/swapnil12348/gocart/internal/platform/httpx"
	"github.com/swapnil12348/gocart/internal/services"
)

// WebhookHandlers receives payment provider callbacks. Requests carry no
// user credentials; authenticity comes from the provider signature.
type WebhookHandlers struct {
	verifier *payments.WebhookVerifier
	orders   services.OrderService
	appID    string
}

// Stripe documents webhook payloads of up to 64KB.
const maxWebhookBodySize = 64 * 1024

// NewWebhookHandlers constructs handlers for the /webhooks endpoints.
func NewWebhookHandlers(verifier *payments.WebhookVerifier, orders services.OrderService, appID string) *WebhookHandlers {
	return &WebhookHandlers{
		verifier: verifier,
		orders:   orders,
		appID:    appID,
	}
}

// Routes wires the /webhooks endpoints onto the provided router.
func (h *WebhookHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/stripe", h.stripeWebhook)
}

func (h *WebhookHandlers) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.verifier == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("webhook_unavailable", "webhook processing is unavailable", http.StatusServiceUnavailable))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize+1))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "failed to read request body", http.StatusBadRequest))
		return
	}
	if int64(len(payload)) > maxWebhookBodySize {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}

	event, err := h.verifier.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_signature", "webhook signature verification failed", http.StatusBadRequest))
		return
	}

	switch string(event.Type) {
	case payments.EventCheckoutSessionCompleted,
		payments.EventCheckoutSessionAsyncPaymentSucceeded,
		payments.EventCheckoutSessionExpired,
		payments.EventCheckoutSessionAsyncPaymentFailed:
	default:
		// Unhandled event types are acknowledged so Stripe stops resending.
		writeJSONResponse(w, http.StatusOK, map[string]string{"received": "true"})
		return
	}

	session, err := payments.CheckoutSessionFromEvent(event)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_event", "malformed checkout session payload", http.StatusBadRequest))
		return
	}

	// Sessions stamped by another application sharing the Stripe account
	// are acknowledged untouched.
	if h.appID != "" && strings.TrimSpace(session.Metadata[payments.MetadataKeyAppID]) != h.appID {
		writeJSONResponse(w, http.StatusOK, map[string]string{"received": "true"})
		return
	}

	meta, err := payments.ParseCheckoutMetadata(session.Metadata, h.appID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_metadata", "session metadata is malformed", http.StatusBadRequest))
		return
	}

	switch string(event.Type) {
	case payments.EventCheckoutSessionCompleted,
		payments.EventCheckoutSessionAsyncPaymentSucceeded:
		if string(event.Type) == payments.EventCheckoutSessionCompleted && !payments.PaymentCollected(session) {
			// Payment still pending; the async result arrives as a
			// separate async_payment event.
			writeJSONResponse(w, http.StatusOK, map[string]string{"received": "true"})
			return
		}
		if err := h.orders.ConfirmPayment(ctx, meta.UserID, meta.OrderIDs); err != nil {
			if errors.Is(err, services.ErrOrderNotFound) {
				// 5xx keeps the delivery in Stripe's retry queue until the
				// orders become visible.
				httpx.WriteError(ctx, w, httpx.NewError("orders_not_found", "referenced orders not found", http.StatusInternalServerError))
				return
			}
			httpx.WriteError(ctx, w, httpx.NewError("webhook_error", "failed to confirm payment", http.StatusInternalServerError))
			return
		}
	default:
		if err := h.orders.CancelPayment(ctx, meta.UserID, meta.OrderIDs); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("webhook_error", "failed to cancel payment", http.StatusInternalServerError))
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"received": "true"})
}
