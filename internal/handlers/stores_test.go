package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/services"
)

func TestStoreHandlersGetStorefront(t *testing.T) {
	service := &stubStoreService{
		storefrontFunc: func(_ context.Context, username string) (services.StorefrontData, error) {
			if username != "lampworld" {
				t.Fatalf("unexpected username %q", username)
			}
			return services.StorefrontData{
				Store:    domain.Store{ID: "store-1", Username: "lampworld"},
				Products: []domain.Product{{ID: "prod-a", InStock: true}},
			}, nil
		},
	}
	handler := NewStoreHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stores?username=lampworld", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp services.StorefrontData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Store.ID != "store-1" || len(resp.Products) != 1 {
		t.Fatalf("unexpected storefront: %+v", resp)
	}
}

func TestStoreHandlersGetStorefrontRequiresUsername(t *testing.T) {
	handler := NewStoreHandlers(nil, &stubStoreService{})

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stores", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestStoreHandlersGetStorefrontNotFound(t *testing.T) {
	service := &stubStoreService{
		storefrontFunc: func(context.Context, string) (services.StorefrontData, error) {
			return services.StorefrontData{}, services.ErrStoreNotFound
		},
	}
	handler := NewStoreHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stores?username=ghost", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestStoreHandlersRegisterStore(t *testing.T) {
	service := &stubStoreService{
		registerFunc: func(_ context.Context, cmd services.RegisterStoreCommand) (domain.Store, error) {
			return domain.Store{ID: "store-1", Username: cmd.Username, Status: domain.StoreStatusPending}, nil
		},
	}
	handler := NewStoreHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/stores",
		`{"name":"Lamp World","username":"lampworld"}`, "owner-1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStoreHandlersRegisterStoreRepeatReturnsExisting(t *testing.T) {
	existing := domain.Store{ID: "store-1", Username: "lampworld", Status: domain.StoreStatusApproved}
	service := &stubStoreService{
		registerFunc: func(context.Context, services.RegisterStoreCommand) (domain.Store, error) {
			return domain.Store{}, services.ErrStoreAlreadyRegistered
		},
		ownFunc: func(context.Context, services.Shopper) (domain.Store, error) {
			return existing, nil
		},
	}
	handler := NewStoreHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/stores",
		`{"name":"Second","username":"second"}`, "owner-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 with existing store, got %d", rr.Code)
	}
	var resp struct {
		Store domain.Store `json:"store"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Store.ID != "store-1" {
		t.Fatalf("expected existing store, got %+v", resp.Store)
	}
}

func TestStoreHandlersRegisterStoreUsernameTaken(t *testing.T) {
	service := &stubStoreService{
		registerFunc: func(context.Context, services.RegisterStoreCommand) (domain.Store, error) {
			return domain.Store{}, services.ErrStoreUsernameTaken
		},
	}
	handler := NewStoreHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/stores", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/stores",
		`{"name":"Copy","username":"lampworld"}`, "owner-2"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}
