package firestore

import (
	"context"
	"errors"
	"strings"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
)

const couponCollection = "coupons"

// CouponRepository reads discount codes. Documents are keyed by the
// upper-cased coupon code.
type CouponRepository struct {
	base *pfirestore.BaseRepository[domain.Coupon]
}

// NewCouponRepository constructs a Firestore-backed coupon repository.
func NewCouponRepository(provider *pfirestore.Provider) (*CouponRepository, error) {
	if provider == nil {
		return nil, errors.New("coupon repository requires firestore provider")
	}
	return &CouponRepository{
		base: pfirestore.NewBaseRepository[domain.Coupon](provider, couponCollection, nil),
	}, nil
}

// FindByCode looks the coupon up by its code, case-insensitively.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Coupon{}, errors.New("coupon repository: code is required")
	}
	doc, err := r.base.Get(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}
	coupon := doc.Data
	coupon.Code = doc.ID
	return coupon, nil
}
