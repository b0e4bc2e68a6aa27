package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
	"github.com/swapnil12348/gocart/internal/repositories"
)

const orderCollection = "orders"

// OrderRepository persists per-store orders.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[domain.Order]
	provider *pfirestore.Provider
	clock    func() time.Time
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider, clock func() time.Time) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	if clock == nil {
		clock = time.Now
	}
	return &OrderRepository{
		base:     pfirestore.NewBaseRepository[domain.Order](provider, orderCollection, nil),
		provider: provider,
		clock:    clock,
	}, nil
}

// Place writes every order of the checkout batch and clears the shopper's
// cart in a single transaction, so a failure leaves neither partial orders
// nor a drained cart behind.
func (r *OrderRepository) Place(ctx context.Context, userID string, placement repositories.OrderPlacement) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("order repository: user id is required")
	}
	if len(placement.Orders) == 0 {
		return errors.New("order repository: at least one order is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	now := r.clock().UTC()
	return pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, order := range placement.Orders {
			if strings.TrimSpace(order.ID) == "" {
				return errors.New("order repository: order id is required")
			}
			order.UserID = userID
			order.CreatedAt = now
			order.UpdatedAt = now
			if err := tx.Create(client.Collection(orderCollection).Doc(order.ID), order); err != nil {
				return err
			}
		}
		if placement.ClearCart {
			userRef := client.Collection(userCollection).Doc(userID)
			if err := tx.Update(userRef, []firestore.Update{
				{Path: "cart", Value: map[string]int64{}},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID fetches a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order := doc.Data
	order.ID = doc.ID
	return order, nil
}

// ListByUser returns every order the user has placed, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// ListByStore returns a seller's incoming orders, newest first.
func (r *OrderRepository) ListByStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("storeId", "==", storeID).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// MarkPaid flips isPaid on the given orders. Orders that are missing, belong
// to another user, or are already paid are skipped, which keeps webhook
// redelivery idempotent. Returns the number of orders transitioned.
func (r *OrderRepository) MarkPaid(ctx context.Context, userID string, orderIDs []string) (int, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return 0, err
	}

	now := r.clock().UTC()
	var updated int
	err = pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = 0
		type pending struct {
			ref *firestore.DocumentRef
		}
		var writes []pending

		for _, orderID := range orderIDs {
			ref := client.Collection(orderCollection).Doc(orderID)
			snapshot, err := tx.Get(ref)
			if err != nil {
				if repositories.IsNotFound(pfirestore.WrapError("orders.get", err)) {
					continue
				}
				return err
			}
			var order domain.Order
			if err := snapshot.DataTo(&order); err != nil {
				return err
			}
			if order.UserID != userID || order.IsPaid {
				continue
			}
			writes = append(writes, pending{ref: ref})
		}

		for _, w := range writes {
			if err := tx.Update(w.ref, []firestore.Update{
				{Path: "isPaid", Value: true},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// DeleteUnpaid removes abandoned orders after a failed or expired payment.
// Paid orders and orders owned by other users are left untouched. Missing
// orders count as already deleted. Returns the number removed.
func (r *OrderRepository) DeleteUnpaid(ctx context.Context, userID string, orderIDs []string) (int, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int
	err = pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		deleted = 0
		var refs []*firestore.DocumentRef

		for _, orderID := range orderIDs {
			ref := client.Collection(orderCollection).Doc(orderID)
			snapshot, err := tx.Get(ref)
			if err != nil {
				if repositories.IsNotFound(pfirestore.WrapError("orders.get", err)) {
					continue
				}
				return err
			}
			var order domain.Order
			if err := snapshot.DataTo(&order); err != nil {
				return err
			}
			if order.UserID != userID || order.IsPaid {
				continue
			}
			refs = append(refs, ref)
		}

		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// UpdateStatus transitions the fulfilment status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus domain.OrderStatus) error {
	_, err := r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "status", Value: string(orderStatus)},
		{Path: "updatedAt", Value: r.clock().UTC()},
	})
	return err
}

func ordersFromDocs(docs []pfirestore.Document[domain.Order]) []domain.Order {
	out := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order := doc.Data
		order.ID = doc.ID
		out = append(out, order)
	}
	return out
}
