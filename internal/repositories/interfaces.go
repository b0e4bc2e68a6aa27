package repositories

import (
	"context"
	"errors"

	"github.com/swapnil12348/gocart/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err categorises as a missing record.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err categorises as a conflicting write.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// UserRepository persists shopper profiles and their cart snapshots.
type UserRepository interface {
	Get(ctx context.Context, userID string) (domain.User, error)
	Ensure(ctx context.Context, user domain.User) (domain.User, error)
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	SaveCart(ctx context.Context, userID string, cart domain.Cart) error
}

// AddressRepository manages the shopper's address book.
type AddressRepository interface {
	Insert(ctx context.Context, address domain.Address) (domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	FindByID(ctx context.Context, userID, addressID string) (domain.Address, error)
}

// CouponRepository looks up discount codes. Codes are stored upper-cased.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
}

// ProductRepository reads the product catalogue.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	ListInStock(ctx context.Context) ([]domain.Product, error)
}

// StoreRepository manages seller storefronts. Usernames are unique.
type StoreRepository interface {
	Insert(ctx context.Context, store domain.Store) (domain.Store, error)
	FindByUsername(ctx context.Context, username string) (domain.Store, error)
	FindByOwner(ctx context.Context, ownerUserID string) (domain.Store, error)
	ListActive(ctx context.Context) ([]domain.Store, error)
}

// OrderPlacement is the transactional write performed at checkout: persist
// every order of the batch and clear the shopper's cart atomically.
type OrderPlacement struct {
	Orders    []domain.Order
	ClearCart bool
}

// OrderRepository persists per-store orders.
type OrderRepository interface {
	Place(ctx context.Context, userID string, placement OrderPlacement) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, userID string, orderIDs []string) (int, error)
	DeleteUnpaid(ctx context.Context, userID string, orderIDs []string) (int, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// RatingRepository persists product reviews keyed by order and product, so a
// shopper can rate each purchased product exactly once per order.
type RatingRepository interface {
	Insert(ctx context.Context, rating domain.Rating) (domain.Rating, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Rating, error)
}
