package services

import (
	"context"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
)

// IDGenerator mints unique identifiers for newly created entities.
type IDGenerator func() string

// Shopper identifies the authenticated customer for service operations.
type Shopper struct {
	UserID string
	Email  string
	Plans  []string
}

// HasPlan reports whether the shopper carries the given subscription plan.
func (s Shopper) HasPlan(plan string) bool {
	for _, p := range s.Plans {
		if p == plan {
			return true
		}
	}
	return false
}

// CartService owns the server-side cart snapshot.
type CartService interface {
	GetCart(ctx context.Context, shopper Shopper) (domain.Cart, error)
	ReplaceCart(ctx context.Context, shopper Shopper, cart domain.Cart) (domain.Cart, error)
}

// CouponValidation is the outcome of validating a coupon for a shopper.
type CouponValidation struct {
	Coupon domain.Coupon
}

// CouponService validates discount codes against shopper eligibility.
type CouponService interface {
	Validate(ctx context.Context, shopper Shopper, code string) (CouponValidation, error)
}

// OrderLineInput is a single requested purchase line. Line order is
// significant: the shipping fee lands on the store of the first line.
type OrderLineInput struct {
	ProductID string
	Quantity  int64
}

// PlaceOrderCommand carries the checkout request.
type PlaceOrderCommand struct {
	Shopper       Shopper
	AddressID     string
	Items         []OrderLineInput
	PaymentMethod domain.PaymentMethod
	CouponCode    string
}

// PlaceOrderResult reports the created orders and, for card payments, the
// hosted payment session the shopper must complete.
type PlaceOrderResult struct {
	OrderIDs   []string
	TotalMinor int64
	SessionID  string
	PaymentURL string
}

// OrderService owns checkout, order listing, and payment reconciliation.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error)
	ListOrders(ctx context.Context, shopper Shopper) ([]domain.Order, error)
	ConfirmPayment(ctx context.Context, userID string, orderIDs []string) error
	CancelPayment(ctx context.Context, userID string, orderIDs []string) error
}

// RateProductCommand carries a product review submission.
type RateProductCommand struct {
	Shopper   Shopper
	OrderID   string
	ProductID string
	Score     int
	Review    string
}

// RatingService manages product reviews tied to completed purchases.
type RatingService interface {
	RateProduct(ctx context.Context, cmd RateProductCommand) (domain.Rating, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error)
	ListByUser(ctx context.Context, shopper Shopper) ([]domain.Rating, error)
}

// StorefrontData is a public store page with its purchasable catalogue and
// the reviews left for each listed product.
type StorefrontData struct {
	Store    domain.Store               `json:"store"`
	Products []domain.Product           `json:"products"`
	Ratings  map[string][]domain.Rating `json:"ratings,omitempty"`
}

// RegisterStoreCommand carries a seller's storefront application.
type RegisterStoreCommand struct {
	Shopper     Shopper
	Name        string
	Username    string
	Description string
	Email       string
	Contact     string
	Address     string
	Logo        string
}

// StoreService manages seller storefronts and the public directory.
type StoreService interface {
	GetStorefront(ctx context.Context, username string) (StorefrontData, error)
	RegisterStore(ctx context.Context, cmd RegisterStoreCommand) (domain.Store, error)
	GetOwnStore(ctx context.Context, shopper Shopper) (domain.Store, error)
}

// AddAddressCommand carries a new shipping address.
type AddAddressCommand struct {
	Shopper Shopper
	Name    string
	Email   string
	Street  string
	City    string
	State   string
	ZIP     string
	Country string
	Phone   string
}

// AddressService manages the shopper's address book.
type AddressService interface {
	AddAddress(ctx context.Context, cmd AddAddressCommand) (domain.Address, error)
	ListAddresses(ctx context.Context, shopper Shopper) ([]domain.Address, error)
}

// Clock abstracts time for deterministic tests.
type Clock func() time.Time
