package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v78"

	"github.com/swapnil12348/gocart/internal/payments"
	"github.com/swapnil12348/gocart/internal/services"
)

const webhookTestSecret = "whsec_test_secret"

func signedWebhookRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, signature))
	return req
}

func checkoutEventPayload(eventType, paymentStatus, appID string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"payment_status": %q,
				"metadata": {
					"orderIds": "ord-1,ord-2",
					"userId": "user-1",
					"appId": %q
				}
			}
		}
	}`, stripe.APIVersion, eventType, paymentStatus, appID)
}

func newWebhookRouter(t *testing.T, orders services.OrderService) chi.Router {
	t.Helper()
	verifier, err := payments.NewWebhookVerifier(webhookTestSecret)
	if err != nil {
		t.Fatalf("NewWebhookVerifier: %v", err)
	}
	handler := NewWebhookHandlers(verifier, orders, "gocart")
	router := chi.NewRouter()
	router.Route("/webhooks", handler.Routes)
	return router
}

func TestStripeWebhookCompletedConfirmsPayment(t *testing.T) {
	var confirmedUser string
	var confirmedOrders []string
	orders := &stubOrderService{
		confirmFunc: func(_ context.Context, userID string, orderIDs []string) error {
			confirmedUser = userID
			confirmedOrders = orderIDs
			return nil
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionCompleted, "paid", "gocart")))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if confirmedUser != "user-1" || len(confirmedOrders) != 2 {
		t.Fatalf("confirmation not dispatched: user=%q orders=%v", confirmedUser, confirmedOrders)
	}
}

func TestStripeWebhookCompletedUnpaidIsAcknowledged(t *testing.T) {
	orders := &stubOrderService{
		confirmFunc: func(context.Context, string, []string) error {
			t.Fatal("unpaid session must not confirm payment")
			return nil
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionCompleted, "unpaid", "gocart")))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestStripeWebhookAsyncPaymentSucceededConfirmsPayment(t *testing.T) {
	var confirmedUser string
	var confirmedOrders []string
	orders := &stubOrderService{
		confirmFunc: func(_ context.Context, userID string, orderIDs []string) error {
			confirmedUser = userID
			confirmedOrders = orderIDs
			return nil
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionAsyncPaymentSucceeded, "paid", "gocart")))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if confirmedUser != "user-1" || len(confirmedOrders) != 2 {
		t.Fatalf("async settlement must confirm payment: user=%q orders=%v", confirmedUser, confirmedOrders)
	}
}

func TestStripeWebhookExpiredCancelsOrders(t *testing.T) {
	var cancelled []string
	orders := &stubOrderService{
		cancelFunc: func(_ context.Context, userID string, orderIDs []string) error {
			cancelled = orderIDs
			return nil
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionExpired, "unpaid", "gocart")))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(cancelled) != 2 {
		t.Fatalf("cancellation not dispatched: %v", cancelled)
	}
}

func TestStripeWebhookMissingOrdersTriggerRetry(t *testing.T) {
	orders := &stubOrderService{
		confirmFunc: func(context.Context, string, []string) error {
			return services.ErrOrderNotFound
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionCompleted, "paid", "gocart")))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 so the provider retries, got %d", rr.Code)
	}
}

func TestStripeWebhookForeignAppIsIgnored(t *testing.T) {
	orders := &stubOrderService{
		confirmFunc: func(context.Context, string, []string) error {
			return errors.New("must not be called")
		},
	}
	router := newWebhookRouter(t, orders)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, checkoutEventPayload(payments.EventCheckoutSessionCompleted, "paid", "other-app")))

	if rr.Code != http.StatusOK {
		t.Fatalf("foreign app sessions must be acknowledged untouched, got %d", rr.Code)
	}
}

func TestStripeWebhookBadSignatureRejected(t *testing.T) {
	router := newWebhookRouter(t, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe",
		strings.NewReader(checkoutEventPayload(payments.EventCheckoutSessionCompleted, "paid", "gocart")))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestStripeWebhookUnhandledEventAcknowledged(t *testing.T) {
	router := newWebhookRouter(t, &stubOrderService{})

	payload := fmt.Sprintf(`{"id":"evt_2","object":"event","api_version":%q,"type":"invoice.paid","data":{"object":{}}}`, stripe.APIVersion)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, signedWebhookRequest(t, payload))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
