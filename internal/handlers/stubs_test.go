package handlers

import (
	"context"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/services"
)

type stubCartService struct {
	getFunc     func(ctx context.Context, shopper services.Shopper) (domain.Cart, error)
	replaceFunc func(ctx context.Context, shopper services.Shopper, cart domain.Cart) (domain.Cart, error)
}

func (s *stubCartService) GetCart(ctx context.Context, shopper services.Shopper) (domain.Cart, error) {
	return s.getFunc(ctx, shopper)
}

func (s *stubCartService) ReplaceCart(ctx context.Context, shopper services.Shopper, cart domain.Cart) (domain.Cart, error) {
	return s.replaceFunc(ctx, shopper, cart)
}

type stubCouponService struct {
	validateFunc func(ctx context.Context, shopper services.Shopper, code string) (services.CouponValidation, error)
}

func (s *stubCouponService) Validate(ctx context.Context, shopper services.Shopper, code string) (services.CouponValidation, error) {
	return s.validateFunc(ctx, shopper, code)
}

type stubOrderService struct {
	placeFunc   func(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlaceOrderResult, error)
	listFunc    func(ctx context.Context, shopper services.Shopper) ([]domain.Order, error)
	confirmFunc func(ctx context.Context, userID string, orderIDs []string) error
	cancelFunc  func(ctx context.Context, userID string, orderIDs []string) error
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
	return s.placeFunc(ctx, cmd)
}

func (s *stubOrderService) ListOrders(ctx context.Context, shopper services.Shopper) ([]domain.Order, error) {
	return s.listFunc(ctx, shopper)
}

func (s *stubOrderService) ConfirmPayment(ctx context.Context, userID string, orderIDs []string) error {
	return s.confirmFunc(ctx, userID, orderIDs)
}

func (s *stubOrderService) CancelPayment(ctx context.Context, userID string, orderIDs []string) error {
	return s.cancelFunc(ctx, userID, orderIDs)
}

type stubRatingService struct {
	rateFunc          func(ctx context.Context, cmd services.RateProductCommand) (domain.Rating, error)
	listByProductFunc func(ctx context.Context, productID string) ([]domain.Rating, error)
	listByUserFunc    func(ctx context.Context, shopper services.Shopper) ([]domain.Rating, error)
}

func (s *stubRatingService) RateProduct(ctx context.Context, cmd services.RateProductCommand) (domain.Rating, error) {
	return s.rateFunc(ctx, cmd)
}

func (s *stubRatingService) ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error) {
	return s.listByProductFunc(ctx, productID)
}

func (s *stubRatingService) ListByUser(ctx context.Context, shopper services.Shopper) ([]domain.Rating, error) {
	return s.listByUserFunc(ctx, shopper)
}

type stubStoreService struct {
	storefrontFunc func(ctx context.Context, username string) (services.StorefrontData, error)
	registerFunc   func(ctx context.Context, cmd services.RegisterStoreCommand) (domain.Store, error)
	ownFunc        func(ctx context.Context, shopper services.Shopper) (domain.Store, error)
}

func (s *stubStoreService) GetStorefront(ctx context.Context, username string) (services.StorefrontData, error) {
	return s.storefrontFunc(ctx, username)
}

func (s *stubStoreService) RegisterStore(ctx context.Context, cmd services.RegisterStoreCommand) (domain.Store, error) {
	return s.registerFunc(ctx, cmd)
}

func (s *stubStoreService) GetOwnStore(ctx context.Context, shopper services.Shopper) (domain.Store, error) {
	return s.ownFunc(ctx, shopper)
}

type stubAddressService struct {
	addFunc  func(ctx context.Context, cmd services.AddAddressCommand) (domain.Address, error)
	listFunc func(ctx context.Context, shopper services.Shopper) ([]domain.Address, error)
}

func (s *stubAddressService) AddAddress(ctx context.Context, cmd services.AddAddressCommand) (domain.Address, error) {
	return s.addFunc(ctx, cmd)
}

func (s *stubAddressService) ListAddresses(ctx context.Context, shopper services.Shopper) ([]domain.Address, error) {
	return s.listFunc(ctx, shopper)
}
