package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/repositories"
)

var (
	// ErrCartInvalidInput signals a malformed cart payload.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartUnknownProduct signals the cart references a product that does not exist.
	ErrCartUnknownProduct = errors.New("cart: unknown product")
)

const maxCartLines = 100

// CartServiceDeps bundles dependencies required to construct a CartService.
type CartServiceDeps struct {
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Clock    Clock
}

type cartService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	clock    Clock
}

// NewCartService wires a CartService backed by the provided repositories.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Users == nil {
		return nil, errors.New("cart service: user repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("cart service: product repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &cartService{
		users:    deps.Users,
		products: deps.Products,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, shopper Shopper) (domain.Cart, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return nil, ErrCartInvalidInput
	}
	return s.users.GetCart(ctx, shopper.UserID)
}

// ReplaceCart stores the client's cart snapshot wholesale. Zero quantities
// drop the line; unknown products are rejected rather than silently kept.
func (s *cartService) ReplaceCart(ctx context.Context, shopper Shopper, cart domain.Cart) (domain.Cart, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return nil, ErrCartInvalidInput
	}
	if len(cart) > maxCartLines {
		return nil, fmt.Errorf("%w: cart exceeds %d lines", ErrCartInvalidInput, maxCartLines)
	}

	cleaned := domain.Cart{}
	ids := make([]string, 0, len(cart))
	for productID, qty := range cart {
		productID = strings.TrimSpace(productID)
		if productID == "" || qty < 0 {
			return nil, ErrCartInvalidInput
		}
		if qty == 0 {
			continue
		}
		cleaned[productID] = qty
		ids = append(ids, productID)
	}

	if len(ids) > 0 {
		known, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrCartUnknownProduct, id)
			}
		}
	}

	if _, err := s.users.Ensure(ctx, domain.User{ID: shopper.UserID, Email: shopper.Email}); err != nil {
		return nil, err
	}
	if err := s.users.SaveCart(ctx, shopper.UserID, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}
