package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Stripe event types the payment reconciler reacts to.
const (
	EventCheckoutSessionCompleted             = "checkout.session.completed"
	EventCheckoutSessionExpired               = "checkout.session.expired"
	EventCheckoutSessionAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Metadata keys attached to checkout sessions at creation time.
const (
	MetadataKeyOrderIDs = "orderIds"
	MetadataKeyUserID   = "userId"
	MetadataKeyAppID    = "appId"
)

// ErrSignatureInvalid signals webhook payload verification failure.
var ErrSignatureInvalid = errors.New("payments: webhook signature invalid")

// CheckoutMetadata is the typed view of the metadata this service stamps
// onto every checkout session it creates.
type CheckoutMetadata struct {
	OrderIDs []string
	UserID   string
	AppID    string
}

// WebhookVerifier validates Stripe webhook payloads against the signing secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier constructs a verifier for the given endpoint signing secret.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("payments: webhook signing secret is required")
	}
	return &WebhookVerifier{secret: secret}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload and
// returns the decoded event.
func (v *WebhookVerifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if v == nil {
		return stripe.Event{}, errors.New("payments: webhook verifier is nil")
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, v.secret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return event, nil
}

// CheckoutSessionFromEvent decodes the checkout session object embedded in a
// checkout.session.* event.
func CheckoutSessionFromEvent(event stripe.Event) (stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return stripe.CheckoutSession{}, fmt.Errorf("payments: decode checkout session: %w", err)
	}
	return session, nil
}

// ParseCheckoutMetadata extracts the typed metadata stamped at session
// creation. Sessions minted by other applications return an error so the
// reconciler can ignore them.
func ParseCheckoutMetadata(metadata map[string]string, expectedAppID string) (CheckoutMetadata, error) {
	appID := strings.TrimSpace(metadata[MetadataKeyAppID])
	if expectedAppID != "" && appID != expectedAppID {
		return CheckoutMetadata{}, fmt.Errorf("payments: session belongs to app %q", appID)
	}

	userID := strings.TrimSpace(metadata[MetadataKeyUserID])
	if userID == "" {
		return CheckoutMetadata{}, errors.New("payments: session metadata missing user id")
	}

	var orderIDs []string
	for _, id := range strings.Split(metadata[MetadataKeyOrderIDs], ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			orderIDs = append(orderIDs, trimmed)
		}
	}
	if len(orderIDs) == 0 {
		return CheckoutMetadata{}, errors.New("payments: session metadata missing order ids")
	}

	return CheckoutMetadata{
		OrderIDs: orderIDs,
		UserID:   userID,
		AppID:    appID,
	}, nil
}

// FormatCheckoutMetadata builds the metadata map stamped onto new sessions.
func FormatCheckoutMetadata(orderIDs []string, userID, appID string) map[string]string {
	return map[string]string{
		MetadataKeyOrderIDs: strings.Join(orderIDs, ","),
		MetadataKeyUserID:   userID,
		MetadataKeyAppID:    appID,
	}
}

// PaymentCollected reports whether the completed session actually captured
// funds. Async payment methods complete the session before funds settle.
func PaymentCollected(session stripe.CheckoutSession) bool {
	return session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
}
