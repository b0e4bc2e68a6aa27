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

func TestAddressHandlersAddAddress(t *testing.T) {
	service := &stubAddressService{
		addFunc: func(_ context.Context, cmd services.AddAddressCommand) (domain.Address, error) {
			if cmd.Street != "1 Main St" {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return domain.Address{ID: "addr_1", UserID: cmd.Shopper.UserID, Street: cmd.Street}, nil
		},
	}
	handler := NewAddressHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/me/addresses", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/me/addresses",
		`{"name":"Jordan","street":"1 Main St","city":"Springfield","country":"US"}`, "user-1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Address domain.Address `json:"address"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Address.ID != "addr_1" {
		t.Fatalf("unexpected address: %+v", resp.Address)
	}
}

func TestAddressHandlersAddAddressMissingFields(t *testing.T) {
	service := &stubAddressService{
		addFunc: func(context.Context, services.AddAddressCommand) (domain.Address, error) {
			return domain.Address{}, services.ErrAddressInvalidInput
		},
	}
	handler := NewAddressHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/me/addresses", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/me/addresses", `{"name":"Jordan"}`, "user-1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestAddressHandlersListAddresses(t *testing.T) {
	service := &stubAddressService{
		listFunc: func(_ context.Context, shopper services.Shopper) ([]domain.Address, error) {
			return []domain.Address{{ID: "addr-1", UserID: shopper.UserID}}, nil
		},
	}
	handler := NewAddressHandlers(nil, service)

	router := chi.NewRouter()
	router.Route("/me/addresses", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/me/addresses", "", "user-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
