package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
	"github.com/swapnil12348/gocart/internal/repositories"
)

const userCollection = "users"

// UserRepository persists shopper profiles with their cart snapshot.
type UserRepository struct {
	base  *pfirestore.BaseRepository[domain.User]
	clock func() time.Time
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider, clock func() time.Time) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	if clock == nil {
		clock = time.Now
	}
	return &UserRepository{
		base:  pfirestore.NewBaseRepository[domain.User](provider, userCollection, nil),
		clock: clock,
	}, nil
}

// Get fetches the user document.
func (r *UserRepository) Get(ctx context.Context, userID string) (domain.User, error) {
	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user := doc.Data
	user.ID = doc.ID
	if user.Cart == nil {
		user.Cart = domain.Cart{}
	}
	return user, nil
}

// Ensure creates the user document if it does not exist yet and returns the
// stored profile either way.
func (r *UserRepository) Ensure(ctx context.Context, user domain.User) (domain.User, error) {
	if strings.TrimSpace(user.ID) == "" {
		return domain.User{}, errors.New("user repository: user id is required")
	}

	existing, err := r.Get(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !repositories.IsNotFound(err) {
		return domain.User{}, err
	}

	now := r.clock().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Cart == nil {
		user.Cart = domain.Cart{}
	}
	if _, err := r.base.Create(ctx, user.ID, user); err != nil {
		if repositories.IsConflict(err) {
			return r.Get(ctx, user.ID)
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetCart returns the user's cart. A missing user yields an empty cart.
func (r *UserRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	user, err := r.Get(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Cart{}, nil
		}
		return nil, err
	}
	return user.Cart, nil
}

// SaveCart replaces the stored cart snapshot.
func (r *UserRepository) SaveCart(ctx context.Context, userID string, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	_, err := r.base.Update(ctx, userID, []firestore.Update{
		{Path: "cart", Value: map[string]int64(cart)},
		{Path: "updatedAt", Value: r.clock().UTC()},
	})
	return err
}
