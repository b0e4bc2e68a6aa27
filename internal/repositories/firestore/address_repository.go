package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
)

const addressCollection = "addresses"

// AddressRepository persists the shopper's address book.
type AddressRepository struct {
	base  *pfirestore.BaseRepository[domain.Address]
	clock func() time.Time
}

// NewAddressRepository constructs a Firestore-backed address repository.
func NewAddressRepository(provider *pfirestore.Provider, clock func() time.Time) (*AddressRepository, error) {
	if provider == nil {
		return nil, errors.New("address repository requires firestore provider")
	}
	if clock == nil {
		clock = time.Now
	}
	return &AddressRepository{
		base:  pfirestore.NewBaseRepository[domain.Address](provider, addressCollection, nil),
		clock: clock,
	}, nil
}

// Insert stores a new address under its pre-generated ID.
func (r *AddressRepository) Insert(ctx context.Context, address domain.Address) (domain.Address, error) {
	if strings.TrimSpace(address.ID) == "" {
		return domain.Address{}, errors.New("address repository: address id is required")
	}
	if strings.TrimSpace(address.UserID) == "" {
		return domain.Address{}, errors.New("address repository: user id is required")
	}
	address.CreatedAt = r.clock().UTC()
	if _, err := r.base.Create(ctx, address.ID, address); err != nil {
		return domain.Address{}, err
	}
	return address, nil
}

// ListByUser returns the user's saved addresses, newest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Address, 0, len(docs))
	for _, doc := range docs {
		address := doc.Data
		address.ID = doc.ID
		out = append(out, address)
	}
	return out, nil
}

// FindByID fetches an address and confirms it belongs to the user.
func (r *AddressRepository) FindByID(ctx context.Context, userID, addressID string) (domain.Address, error) {
	doc, err := r.base.Get(ctx, addressID)
	if err != nil {
		return domain.Address{}, err
	}
	address := doc.Data
	address.ID = doc.ID
	if address.UserID != userID {
		return domain.Address{}, pfirestore.WrapError("addresses.get", status.Error(codes.NotFound, "address not found"))
	}
	return address, nil
}
