package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	"github.com/swapnil12348/gocart/internal/domain"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
)

const productCollection = "products"

// ProductRepository reads the product catalogue.
type ProductRepository struct {
	base     *pfirestore.BaseRepository[domain.Product]
	provider *pfirestore.Provider
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base:     pfirestore.NewBaseRepository[domain.Product](provider, productCollection, nil),
		provider: provider,
	}, nil
}

// FindByID fetches a single product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	product := doc.Data
	product.ID = doc.ID
	return product, nil
}

// FindByIDs batch-fetches products. Missing IDs are absent from the result
// map rather than an error so callers can report them individually.
func (r *ProductRepository) FindByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	refs := make([]*firestore.DocumentRef, 0, len(productIDs))
	for _, id := range productIDs {
		refs = append(refs, client.Collection(productCollection).Doc(id))
	}

	snapshots, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, pfirestore.WrapError("products.getall", err)
	}
	for _, snapshot := range snapshots {
		if !snapshot.Exists() {
			continue
		}
		doc, err := r.base.Decode(snapshot)
		if err != nil {
			return nil, err
		}
		product := doc.Data
		product.ID = doc.ID
		out[product.ID] = product
	}
	return out, nil
}

// ListByStore returns every product listed by a store.
func (r *ProductRepository) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("storeId", "==", storeID)
	})
	if err != nil {
		return nil, err
	}
	return productsFromDocs(docs), nil
}

// ListInStock returns the storefront catalogue of purchasable products.
func (r *ProductRepository) ListInStock(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("inStock", "==", true)
	})
	if err != nil {
		return nil, err
	}
	return productsFromDocs(docs), nil
}

func productsFromDocs(docs []pfirestore.Document[domain.Product]) []domain.Product {
	out := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		product := doc.Data
		product.ID = doc.ID
		out = append(out, product)
	}
	return out
}
