package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
)

const ratingCollection = "ratings"

// RatingID derives the document ID that enforces one rating per product per
// order.
func RatingID(orderID, productID string) string {
	return fmt.Sprintf("%s_%s", orderID, productID)
}

// RatingRepository persists product reviews.
type RatingRepository struct {
	base  *pfirestore.BaseRepository[domain.Rating]
	clock func() time.Time
}

// NewRatingRepository constructs a Firestore-backed rating repository.
func NewRatingRepository(provider *pfirestore.Provider, clock func() time.Time) (*RatingRepository, error) {
	if provider == nil {
		return nil, errors.New("rating repository requires firestore provider")
	}
	if clock == nil {
		clock = time.Now
	}
	return &RatingRepository{
		base:  pfirestore.NewBaseRepository[domain.Rating](provider, ratingCollection, nil),
		clock: clock,
	}, nil
}

// Insert stores a new rating. A second rating for the same order and product
// surfaces as a conflict.
func (r *RatingRepository) Insert(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	if strings.TrimSpace(rating.OrderID) == "" || strings.TrimSpace(rating.ProductID) == "" {
		return domain.Rating{}, errors.New("rating repository: order id and product id are required")
	}
	now := r.clock().UTC()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	rating.ID = RatingID(rating.OrderID, rating.ProductID)
	if _, err := r.base.Create(ctx, rating.ID, rating); err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}

// ListByProduct returns every rating for a product, newest first.
func (r *RatingRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("productId", "==", productID).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ratingsFromDocs(docs), nil
}

// ListByUser returns every rating the user has written, newest first.
func (r *RatingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ratingsFromDocs(docs), nil
}

func ratingsFromDocs(docs []pfirestore.Document[domain.Rating]) []domain.Rating {
	out := make([]domain.Rating, 0, len(docs))
	for _, doc := range docs {
		rating := doc.Data
		rating.ID = doc.ID
		out = append(out, rating)
	}
	return out
}
