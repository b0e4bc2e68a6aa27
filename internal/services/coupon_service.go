package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/repositories"
)

var (
	// ErrCouponInvalidCode signals a blank or malformed coupon code.
	ErrCouponInvalidCode = errors.New("coupon: invalid code")
	// ErrCouponNotFound signals the code does not exist or has expired.
	ErrCouponNotFound = errors.New("coupon: not found")
	// ErrCouponIneligible signals the shopper does not meet the coupon's audience.
	ErrCouponIneligible = errors.New("coupon: not eligible")
	// ErrCouponUnauthenticated signals an audience-restricted coupon was tried anonymously.
	ErrCouponUnauthenticated = errors.New("coupon: authentication required")
)

// MemberPlan names the subscription tier that member-only coupons require.
const MemberPlan = "plus"

// CouponServiceDeps bundles dependencies required to construct a CouponService.
type CouponServiceDeps struct {
	Coupons repositories.CouponRepository
	Orders  repositories.OrderRepository
	Clock   Clock
}

type couponService struct {
	coupons repositories.CouponRepository
	orders  repositories.OrderRepository
	clock   Clock
}

// NewCouponService wires a CouponService backed by the provided repositories.
func NewCouponService(deps CouponServiceDeps) (CouponService, error) {
	if deps.Coupons == nil {
		return nil, errors.New("coupon service: coupon repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("coupon service: order repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &couponService{
		coupons: deps.Coupons,
		orders:  deps.Orders,
		clock:   func() time.Time { return clock().UTC() },
	}, nil
}

// Validate resolves the coupon and checks audience eligibility: new-user
// coupons require the shopper to have no prior orders, member coupons
// require the paid plan. Expired coupons report as not found.
func (s *couponService) Validate(ctx context.Context, shopper Shopper, code string) (CouponValidation, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return CouponValidation{}, ErrCouponInvalidCode
	}

	coupon, err := s.coupons.FindByCode(ctx, normalized)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CouponValidation{}, ErrCouponNotFound
		}
		return CouponValidation{}, err
	}

	if coupon.Expired(s.clock()) {
		return CouponValidation{}, ErrCouponNotFound
	}

	if coupon.ForNewUsers || coupon.ForMembers {
		if strings.TrimSpace(shopper.UserID) == "" {
			return CouponValidation{}, ErrCouponUnauthenticated
		}
	}

	if coupon.ForNewUsers {
		orders, err := s.orders.ListByUser(ctx, shopper.UserID)
		if err != nil {
			return CouponValidation{}, err
		}
		if len(orders) > 0 {
			return CouponValidation{}, ErrCouponIneligible
		}
	}

	if coupon.ForMembers && !shopper.HasPlan(MemberPlan) {
		return CouponValidation{}, ErrCouponIneligible
	}

	return CouponValidation{Coupon: coupon}, nil
}
