package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/services"
)

func authedRequest(method, target string, body string, uid string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if uid != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: uid}))
	}
	return req
}

func TestCartHandlersGetCart(t *testing.T) {
	service := &stubCartService{
		getFunc: func(_ context.Context, shopper services.Shopper) (domain.Cart, error) {
			if shopper.UserID != "user-7" {
				t.Fatalf("unexpected user id %q", shopper.UserID)
			}
			return domain.Cart{"prod-a": 2}, nil
		},
	}
	handler := NewCartHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/cart", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/cart", "", "user-7"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp cartResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Cart["prod-a"] != 2 || resp.Items != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCartHandlersGetCartUnauthenticated(t *testing.T) {
	handler := NewCartHandlers(nil, &stubCartService{})

	router := chi.NewRouter()
	router.Route("/cart", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/cart", "", ""))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCartHandlersPutCart(t *testing.T) {
	var got domain.Cart
	service := &stubCartService{
		replaceFunc: func(_ context.Context, shopper services.Shopper, cart domain.Cart) (domain.Cart, error) {
			got = cart
			return cart, nil
		},
	}
	handler := NewCartHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/cart", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPut, "/cart", `{"cart":{"prod-a":3}}`, "user-7"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got["prod-a"] != 3 {
		t.Fatalf("service received cart %v", got)
	}
}

func TestCartHandlersPutCartUnknownProduct(t *testing.T) {
	service := &stubCartService{
		replaceFunc: func(context.Context, services.Shopper, domain.Cart) (domain.Cart, error) {
			return nil, services.ErrCartUnknownProduct
		},
	}
	handler := NewCartHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/cart", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPut, "/cart", `{"cart":{"prod-x":1}}`, "user-7"))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestCartHandlersPutCartBadJSON(t *testing.T) {
	handler := NewCartHandlers(nil, &stubCartService{})

	router := chi.NewRouter()
	router.Route("/cart", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPut, "/cart", `{not json`, "user-7"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
