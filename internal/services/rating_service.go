package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/repositories"
)

var (
	// ErrRatingInvalidInput signals a malformed review submission.
	ErrRatingInvalidInput = errors.New("rating: invalid input")
	// ErrRatingOrderNotFound signals the referenced order does not exist or is foreign.
	ErrRatingOrderNotFound = errors.New("rating: order not found")
	// ErrRatingProductNotInOrder signals the product was not part of the order.
	ErrRatingProductNotInOrder = errors.New("rating: product not in order")
	// ErrRatingConflict signals the product was already rated for this order.
	ErrRatingConflict = errors.New("rating: already rated for this order")
)

const maxReviewLength = 2000

// RatingServiceDeps bundles dependencies required to construct a RatingService.
type RatingServiceDeps struct {
	Ratings repositories.RatingRepository
	Orders  repositories.OrderRepository
	Clock   Clock
}

type ratingService struct {
	ratings   repositories.RatingRepository
	orders    repositories.OrderRepository
	sanitizer *bluemonday.Policy
	clock     Clock
}

// NewRatingService wires a RatingService backed by the provided repositories.
func NewRatingService(deps RatingServiceDeps) (RatingService, error) {
	if deps.Ratings == nil {
		return nil, errors.New("rating service: rating repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("rating service: order repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ratingService{
		ratings:   deps.Ratings,
		orders:    deps.Orders,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     func() time.Time { return clock().UTC() },
	}, nil
}

// RateProduct records a review for a product the shopper actually bought in
// the referenced order. A product can be rated at most once per order; a
// second attempt fails with ErrRatingConflict.
func (s *ratingService) RateProduct(ctx context.Context, cmd RateProductCommand) (domain.Rating, error) {
	if strings.TrimSpace(cmd.Shopper.UserID) == "" ||
		strings.TrimSpace(cmd.OrderID) == "" ||
		strings.TrimSpace(cmd.ProductID) == "" {
		return domain.Rating{}, ErrRatingInvalidInput
	}
	if cmd.Score < 1 || cmd.Score > 5 {
		return domain.Rating{}, ErrRatingInvalidInput
	}

	review := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Review))
	if len(review) > maxReviewLength {
		return domain.Rating{}, ErrRatingInvalidInput
	}

	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Rating{}, ErrRatingOrderNotFound
		}
		return domain.Rating{}, err
	}
	if order.UserID != cmd.Shopper.UserID {
		return domain.Rating{}, ErrRatingOrderNotFound
	}
	if !orderContainsProduct(order, cmd.ProductID) {
		return domain.Rating{}, ErrRatingProductNotInOrder
	}

	rating := domain.Rating{
		UserID:    cmd.Shopper.UserID,
		ProductID: cmd.ProductID,
		OrderID:   cmd.OrderID,
		Score:     cmd.Score,
		Review:    review,
	}

	saved, err := s.ratings.Insert(ctx, rating)
	if err != nil {
		if repositories.IsConflict(err) {
			return domain.Rating{}, ErrRatingConflict
		}
		return domain.Rating{}, err
	}
	return saved, nil
}

func (s *ratingService) ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrRatingInvalidInput
	}
	return s.ratings.ListByProduct(ctx, productID)
}

func (s *ratingService) ListByUser(ctx context.Context, shopper Shopper) ([]domain.Rating, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return nil, ErrRatingInvalidInput
	}
	return s.ratings.ListByUser(ctx, shopper.UserID)
}

func orderContainsProduct(order domain.Order, productID string) bool {
	for _, item := range order.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
