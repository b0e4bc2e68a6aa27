package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/swapnil12348/gocart/internal/domain"
)

func newCartService(t *testing.T, users *fakeUserRepo, products *fakeProductRepo) CartService {
	t.Helper()
	service, err := NewCartService(CartServiceDeps{
		Users:    users,
		Products: products,
		Clock:    fixedClock,
	})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	return service
}

func TestReplaceCartStoresSnapshot(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo(
		domain.Product{ID: "prod-a", InStock: true},
		domain.Product{ID: "prod-b", InStock: true},
	)
	service := newCartService(t, users, products)

	saved, err := service.ReplaceCart(context.Background(), Shopper{UserID: "user-1", Email: "u@example.com"},
		domain.Cart{"prod-a": 2, "prod-b": 1})
	if err != nil {
		t.Fatalf("ReplaceCart: %v", err)
	}
	if saved.TotalQuantity() != 3 {
		t.Errorf("TotalQuantity = %d, want 3", saved.TotalQuantity())
	}
	if got := users.carts["user-1"]; got["prod-a"] != 2 {
		t.Errorf("persisted cart = %v", got)
	}
	if _, ok := users.users["user-1"]; !ok {
		t.Error("user document should be created on first cart write")
	}
}

func TestReplaceCartDropsZeroQuantities(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo(domain.Product{ID: "prod-a", InStock: true})
	service := newCartService(t, users, products)

	saved, err := service.ReplaceCart(context.Background(), Shopper{UserID: "user-1"},
		domain.Cart{"prod-a": 1, "prod-gone": 0})
	if err != nil {
		t.Fatalf("ReplaceCart: %v", err)
	}
	if len(saved) != 1 {
		t.Errorf("zero-quantity line should be dropped, cart = %v", saved)
	}
}

func TestReplaceCartRejectsBadInput(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo(domain.Product{ID: "prod-a", InStock: true})
	service := newCartService(t, users, products)

	if _, err := service.ReplaceCart(context.Background(), Shopper{UserID: "user-1"},
		domain.Cart{"prod-a": -1}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("negative quantity: expected ErrCartInvalidInput, got %v", err)
	}

	if _, err := service.ReplaceCart(context.Background(), Shopper{UserID: "user-1"},
		domain.Cart{"prod-unknown": 1}); !errors.Is(err, ErrCartUnknownProduct) {
		t.Fatalf("unknown product: expected ErrCartUnknownProduct, got %v", err)
	}

	oversized := domain.Cart{}
	for i := 0; i < maxCartLines+1; i++ {
		oversized[fmt.Sprintf("prod-%d", i)] = 1
	}
	if _, err := service.ReplaceCart(context.Background(), Shopper{UserID: "user-1"}, oversized); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("oversized cart: expected ErrCartInvalidInput, got %v", err)
	}

	if _, err := service.ReplaceCart(context.Background(), Shopper{}, domain.Cart{"prod-a": 1}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("anonymous: expected ErrCartInvalidInput, got %v", err)
	}
}

func TestGetCartMissingUserIsEmpty(t *testing.T) {
	service := newCartService(t, newFakeUserRepo(), newFakeProductRepo())

	cart, err := service.GetCart(context.Background(), Shopper{UserID: "user-unknown"})
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("expected empty cart, got %v", cart)
	}
}
