package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
)

const storeCollection = "stores"

// StoreRepository manages seller storefronts.
type StoreRepository struct {
	base     *pfirestore.BaseRepository[domain.Store]
	provider *pfirestore.Provider
	clock    func() time.Time
}

// NewStoreRepository constructs a Firestore-backed store repository.
func NewStoreRepository(provider *pfirestore.Provider, clock func() time.Time) (*StoreRepository, error) {
	if provider == nil {
		return nil, errors.New("store repository requires firestore provider")
	}
	if clock == nil {
		clock = time.Now
	}
	return &StoreRepository{
		base:     pfirestore.NewBaseRepository[domain.Store](provider, storeCollection, nil),
		provider: provider,
		clock:    clock,
	}, nil
}

// Insert registers a new store. The username is reserved inside a transaction
// so two sellers cannot claim the same handle concurrently.
func (r *StoreRepository) Insert(ctx context.Context, store domain.Store) (domain.Store, error) {
	if strings.TrimSpace(store.ID) == "" {
		return domain.Store{}, errors.New("store repository: store id is required")
	}
	store.Username = strings.ToLower(strings.TrimSpace(store.Username))
	if store.Username == "" {
		return domain.Store{}, errors.New("store repository: username is required")
	}

	now := r.clock().UTC()
	store.CreatedAt = now
	store.UpdatedAt = now

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.Store{}, err
	}

	err = pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		query := client.Collection(storeCollection).
			Where("username", "==", store.Username).
			Limit(1)
		iter := tx.Documents(query)
		defer iter.Stop()

		if _, err := iter.Next(); err == nil {
			return status.Error(codes.AlreadyExists, "store username already taken")
		} else if !errors.Is(err, iterator.Done) {
			return err
		}

		ownerQuery := client.Collection(storeCollection).
			Where("ownerUserId", "==", store.OwnerUserID).
			Limit(1)
		ownerIter := tx.Documents(ownerQuery)
		defer ownerIter.Stop()

		if _, err := ownerIter.Next(); err == nil {
			return status.Error(codes.AlreadyExists, "user already owns a store")
		} else if !errors.Is(err, iterator.Done) {
			return err
		}

		return tx.Create(client.Collection(storeCollection).Doc(store.ID), store)
	})
	if err != nil {
		return domain.Store{}, err
	}
	return store, nil
}

// FindByUsername resolves a storefront by its public handle.
func (r *StoreRepository) FindByUsername(ctx context.Context, username string) (domain.Store, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return domain.Store{}, errors.New("store repository: username is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("username", "==", username).Limit(1)
	})
	if err != nil {
		return domain.Store{}, err
	}
	if len(docs) == 0 {
		return domain.Store{}, pfirestore.WrapError("stores.find", status.Error(codes.NotFound, "store not found"))
	}
	store := docs[0].Data
	store.ID = docs[0].ID
	return store, nil
}

// FindByOwner returns the store owned by the given user.
func (r *StoreRepository) FindByOwner(ctx context.Context, ownerUserID string) (domain.Store, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("ownerUserId", "==", ownerUserID).Limit(1)
	})
	if err != nil {
		return domain.Store{}, err
	}
	if len(docs) == 0 {
		return domain.Store{}, pfirestore.WrapError("stores.find", status.Error(codes.NotFound, "store not found"))
	}
	store := docs[0].Data
	store.ID = docs[0].ID
	return store, nil
}

// ListActive returns approved, active storefronts for the public directory.
func (r *StoreRepository) ListActive(ctx context.Context) ([]domain.Store, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("status", "==", string(domain.StoreStatusApproved)).
			Where("isActive", "==", true)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Store, 0, len(docs))
	for _, doc := range docs {
		store := doc.Data
		store.ID = doc.ID
		out = append(out, store)
	}
	return out, nil
}
