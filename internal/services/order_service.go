package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/payments"
	"github.com/swapnil12348/gocart/internal/platform/jobs"
	"github.com/swapnil12348/gocart/internal/platform/observability"
	"github.com/swapnil12348/gocart/internal/repositories"
)

var (
	// ErrOrderInvalidInput signals a malformed checkout request.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderEmptyCart signals checkout was attempted with an empty cart.
	ErrOrderEmptyCart = errors.New("order: cart is empty")
	// ErrOrderInvalidAddress signals the shipping address is missing or foreign.
	ErrOrderInvalidAddress = errors.New("order: invalid address")
	// ErrOrderProductUnavailable signals a cart line references a missing or out-of-stock product.
	ErrOrderProductUnavailable = errors.New("order: product unavailable")
	// ErrOrderNotFound signals none of the referenced orders exist.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderPaymentFailed signals the payment session could not be created.
	ErrOrderPaymentFailed = errors.New("order: payment session failed")
)

// CheckoutSettings carries the pricing and payment-session parameters.
type CheckoutSettings struct {
	Currency         string
	ShippingFeeMinor int64
	MemberPlan       string
	AppID            string
	SessionTTL       time.Duration
	SuccessURL       string
	CancelURL        string
}

// OrderServiceDeps bundles dependencies required to construct an OrderService.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Users     repositories.UserRepository
	Products  repositories.ProductRepository
	Addresses repositories.AddressRepository
	Coupons   CouponService
	Payments  payments.Provider
	Events    jobs.OrderEventPublisher
	Logger    observability.EventLogger
	Clock     Clock
	IDGen     IDGenerator
	Settings  CheckoutSettings
}

type orderService struct {
	orders    repositories.OrderRepository
	users     repositories.UserRepository
	products  repositories.ProductRepository
	addresses repositories.AddressRepository
	coupons   CouponService
	payments  payments.Provider
	events    jobs.OrderEventPublisher
	logger    observability.EventLogger
	clock     Clock
	idGen     IDGenerator
	settings  CheckoutSettings
}

// NewOrderService wires an OrderService backed by the provided dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("order service: user repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Addresses == nil {
		return nil, errors.New("order service: address repository is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("order service: coupon service is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("order service: payment provider is required")
	}
	if deps.IDGen == nil {
		return nil, errors.New("order service: id generator is required")
	}

	events := deps.Events
	if events == nil {
		events = jobs.NopOrderEventPublisher{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	settings := deps.Settings
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 30 * time.Minute
	}
	if settings.MemberPlan == "" {
		settings.MemberPlan = MemberPlan
	}

	return &orderService{
		orders:    deps.Orders,
		users:     deps.Users,
		products:  deps.Products,
		addresses: deps.Addresses,
		coupons:   deps.Coupons,
		payments:  deps.Payments,
		events:    events,
		logger:    logger,
		clock:     func() time.Time { return clock().UTC() },
		idGen:     deps.IDGen,
		settings:  settings,
	}, nil
}

// PlaceOrder splits the requested items into one order per store, prices
// each slice, persists the batch atomically, and for card payments opens a
// hosted checkout session covering the combined total. Items are priced
// from the catalogue, never from client-supplied amounts.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error) {
	if strings.TrimSpace(cmd.Shopper.UserID) == "" || strings.TrimSpace(cmd.AddressID) == "" {
		return PlaceOrderResult{}, ErrOrderInvalidInput
	}
	if !cmd.PaymentMethod.Valid() {
		return PlaceOrderResult{}, fmt.Errorf("%w: payment method %q", ErrOrderInvalidInput, cmd.PaymentMethod)
	}

	if len(cmd.Items) == 0 {
		return PlaceOrderResult{}, ErrOrderEmptyCart
	}
	for _, item := range cmd.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 {
			return PlaceOrderResult{}, fmt.Errorf("%w: bad line %q x%d", ErrOrderInvalidInput, item.ProductID, item.Quantity)
		}
	}

	address, err := s.addresses.FindByID(ctx, cmd.Shopper.UserID, cmd.AddressID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return PlaceOrderResult{}, ErrOrderInvalidAddress
		}
		return PlaceOrderResult{}, err
	}

	var coupon domain.Coupon
	var appliedCoupon *domain.AppliedCoupon
	couponCode := strings.ToUpper(strings.TrimSpace(cmd.CouponCode))
	if couponCode != "" {
		validation, err := s.coupons.Validate(ctx, cmd.Shopper, couponCode)
		if err != nil {
			return PlaceOrderResult{}, err
		}
		coupon = validation.Coupon
		appliedCoupon = &domain.AppliedCoupon{
			Code:        coupon.Code,
			DiscountPct: coupon.DiscountPct,
			ForNewUsers: coupon.ForNewUsers,
			ForMembers:  coupon.ForMembers,
		}
	}

	lines, storeByProduct, err := s.resolveLines(ctx, cmd.Items)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	groups := domain.GroupCartByStore(lines, storeByProduct)
	priced, grandTotal := domain.PriceGroups(domain.PricingInput{
		Groups:           groups,
		DiscountPct:      coupon.DiscountPct,
		ShippingFeeMinor: s.settings.ShippingFeeMinor,
		WaiveShipping:    cmd.Shopper.HasPlan(s.settings.MemberPlan),
	})

	now := s.clock()
	orders := make([]domain.Order, 0, len(priced))
	for _, group := range priced {
		orders = append(orders, domain.Order{
			ID:            "ord_" + s.idGen(),
			UserID:        cmd.Shopper.UserID,
			StoreID:       group.StoreID,
			AddressID:     cmd.AddressID,
			Address:       address,
			Items:         group.Items,
			TotalMinor:    group.TotalMinor,
			PaymentMethod: cmd.PaymentMethod,
			IsPaid:        false,
			IsCouponUsed:  couponCode != "",
			CouponCode:    couponCode,
			Coupon:        appliedCoupon,
			Status:        domain.OrderStatusPlaced,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	// Card-paid carts survive until the webhook confirms payment, so an
	// abandoned session leaves the cart intact.
	clearCart := cmd.PaymentMethod == domain.PaymentMethodCOD
	if err := s.orders.Place(ctx, cmd.Shopper.UserID, repositories.OrderPlacement{
		Orders:    orders,
		ClearCart: clearCart,
	}); err != nil {
		return PlaceOrderResult{}, err
	}

	orderIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
		s.publishEvent(ctx, jobs.OrderEvent{
			Type:       jobs.EventOrderPlaced,
			OrderID:    order.ID,
			UserID:     order.UserID,
			StoreID:    order.StoreID,
			TotalMinor: order.TotalMinor,
			OccurredAt: now,
		})
	}

	result := PlaceOrderResult{OrderIDs: orderIDs, TotalMinor: grandTotal}
	if cmd.PaymentMethod != domain.PaymentMethodStripe {
		return result, nil
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
		AmountMinor:    grandTotal,
		Currency:       s.settings.Currency,
		CustomerEmail:  cmd.Shopper.Email,
		SuccessURL:     s.settings.SuccessURL,
		CancelURL:      s.settings.CancelURL,
		Metadata:       payments.FormatCheckoutMetadata(orderIDs, cmd.Shopper.UserID, s.settings.AppID),
		IdempotencyKey: orderIDs[0],
		ExpiresAt:      now.Add(s.settings.SessionTTL),
		Items:          checkoutLineItems(priced, orders, s.settings.Currency),
	})
	if err != nil {
		// Orders without a session can never be paid; roll them back.
		if _, delErr := s.orders.DeleteUnpaid(ctx, cmd.Shopper.UserID, orderIDs); delErr != nil {
			s.logger(ctx, "orders.rollback.failed", map[string]any{
				"userId": cmd.Shopper.UserID,
				"error":  delErr.Error(),
			})
		}
		return PlaceOrderResult{}, fmt.Errorf("%w: %v", ErrOrderPaymentFailed, err)
	}

	result.SessionID = session.ID
	result.PaymentURL = session.RedirectURL
	return result, nil
}

// ListOrders returns the shopper's visible orders: cash orders always, card
// orders only once payment is confirmed.
func (s *orderService) ListOrders(ctx context.Context, shopper Shopper) ([]domain.Order, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return nil, ErrOrderInvalidInput
	}
	all, err := s.orders.ListByUser(ctx, shopper.UserID)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Order, 0, len(all))
	for _, order := range all {
		if order.PaymentMethod == domain.PaymentMethodCOD ||
			(order.PaymentMethod == domain.PaymentMethodStripe && order.IsPaid) {
			visible = append(visible, order)
		}
	}
	return visible, nil
}

// ConfirmPayment marks the referenced orders paid and clears the shopper's
// cart. Redelivered confirmations are no-ops; confirmations for orders that
// no longer exist are an error so the caller can retry later.
func (s *orderService) ConfirmPayment(ctx context.Context, userID string, orderIDs []string) error {
	if strings.TrimSpace(userID) == "" || len(orderIDs) == 0 {
		return ErrOrderInvalidInput
	}

	updated, err := s.orders.MarkPaid(ctx, userID, orderIDs)
	if err != nil {
		return err
	}
	if updated == 0 {
		if !s.anyOrderExists(ctx, orderIDs) {
			return fmt.Errorf("%w: orders %v", ErrOrderNotFound, orderIDs)
		}
		// Already paid on a previous delivery.
		return nil
	}

	if err := s.users.SaveCart(ctx, userID, domain.Cart{}); err != nil {
		s.logger(ctx, "orders.cart_clear.failed", map[string]any{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	now := s.clock()
	for _, orderID := range orderIDs {
		s.publishEvent(ctx, jobs.OrderEvent{
			Type:       jobs.EventOrderPaid,
			OrderID:    orderID,
			UserID:     userID,
			OccurredAt: now,
		})
	}
	return nil
}

// CancelPayment removes the unpaid orders left behind by an expired or
// failed payment session. Already-removed orders are a no-op.
func (s *orderService) CancelPayment(ctx context.Context, userID string, orderIDs []string) error {
	if strings.TrimSpace(userID) == "" || len(orderIDs) == 0 {
		return ErrOrderInvalidInput
	}

	deleted, err := s.orders.DeleteUnpaid(ctx, userID, orderIDs)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}

	now := s.clock()
	for _, orderID := range orderIDs {
		s.publishEvent(ctx, jobs.OrderEvent{
			Type:       jobs.EventOrderCancelled,
			OrderID:    orderID,
			UserID:     userID,
			OccurredAt: now,
		})
	}
	return nil
}

// resolveLines loads the requested products and projects the item list into
// order lines, preserving the order lines arrived in. Repeated product IDs
// fold into the first occurrence.
func (s *orderService) resolveLines(ctx context.Context, items []OrderLineInput) ([]domain.OrderItem, map[string]string, error) {
	ids := make([]string, 0, len(items))
	quantities := make(map[string]int64, len(items))
	for _, item := range items {
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]domain.OrderItem, 0, len(ids))
	storeByProduct := make(map[string]string, len(ids))
	for _, productID := range ids {
		product, ok := products[productID]
		if !ok || !product.InStock {
			return nil, nil, fmt.Errorf("%w: %s", ErrOrderProductUnavailable, productID)
		}
		lines = append(lines, domain.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   quantities[productID],
			PriceMinor: product.PriceMinor,
		})
		storeByProduct[productID] = product.StoreID
	}
	return lines, storeByProduct, nil
}

func (s *orderService) anyOrderExists(ctx context.Context, orderIDs []string) bool {
	for _, orderID := range orderIDs {
		if _, err := s.orders.FindByID(ctx, orderID); err == nil {
			return true
		}
	}
	return false
}

func (s *orderService) publishEvent(ctx context.Context, event jobs.OrderEvent) {
	if _, err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "orders.event_publish.failed", map[string]any{
			"type":    event.Type,
			"orderId": event.OrderID,
			"error":   err.Error(),
		})
	}
}

func checkoutLineItems(priced []domain.PricedGroup, orders []domain.Order, currency string) []payments.CheckoutLineItem {
	items := make([]payments.CheckoutLineItem, 0, len(priced))
	for i, group := range priced {
		items = append(items, payments.CheckoutLineItem{
			Name:        fmt.Sprintf("Order %s", orders[i].ID),
			SKU:         group.StoreID,
			Quantity:    1,
			AmountMinor: group.TotalMinor,
			Currency:    currency,
		})
	}
	return items
}
