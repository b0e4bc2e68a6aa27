package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/platform/cache"
	"github.com/swapnil12348/gocart/internal/repositories"
)

var (
	// ErrStoreInvalidInput signals a malformed storefront request.
	ErrStoreInvalidInput = errors.New("store: invalid input")
	// ErrStoreNotFound signals the storefront does not exist or is not public.
	ErrStoreNotFound = errors.New("store: not found")
	// ErrStoreUsernameTaken signals the requested handle is already claimed.
	ErrStoreUsernameTaken = errors.New("store: username taken")
	// ErrStoreAlreadyRegistered signals the user already owns a store.
	ErrStoreAlreadyRegistered = errors.New("store: already registered")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,38}$`)

// StoreServiceDeps bundles dependencies required to construct a StoreService.
type StoreServiceDeps struct {
	Stores   repositories.StoreRepository
	Products repositories.ProductRepository
	Ratings  repositories.RatingRepository
	Cache    *cache.Cache
	Clock    Clock
	IDGen    IDGenerator
}

type storeService struct {
	stores   repositories.StoreRepository
	products repositories.ProductRepository
	ratings  repositories.RatingRepository
	cache    *cache.Cache
	clock    Clock
	idGen    IDGenerator
}

// NewStoreService wires a StoreService backed by the provided repositories.
// A nil cache disables the storefront read-through cache.
func NewStoreService(deps StoreServiceDeps) (StoreService, error) {
	if deps.Stores == nil {
		return nil, errors.New("store service: store repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("store service: product repository is required")
	}
	if deps.IDGen == nil {
		return nil, errors.New("store service: id generator is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &storeService{
		stores:   deps.Stores,
		products: deps.Products,
		ratings:  deps.Ratings,
		cache:    deps.Cache,
		clock:    func() time.Time { return clock().UTC() },
		idGen:    deps.IDGen,
	}, nil
}

// GetStorefront loads the public store page with its in-stock catalogue,
// serving from the cache when warm.
func (s *storeService) GetStorefront(ctx context.Context, username string) (StorefrontData, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return StorefrontData{}, ErrStoreInvalidInput
	}

	cacheKey := storefrontCacheKey(username)
	var cached StorefrontData
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else {
		s.cache.WarnOnError(ctx, err)
	}

	store, err := s.stores.FindByUsername(ctx, username)
	if err != nil {
		if repositories.IsNotFound(err) {
			return StorefrontData{}, ErrStoreNotFound
		}
		return StorefrontData{}, err
	}
	if store.Status != domain.StoreStatusApproved || !store.IsActive {
		return StorefrontData{}, ErrStoreNotFound
	}

	products, err := s.products.ListByStore(ctx, store.ID)
	if err != nil {
		return StorefrontData{}, err
	}
	inStock := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.InStock {
			inStock = append(inStock, product)
		}
	}

	data := StorefrontData{Store: store, Products: inStock}
	if s.ratings != nil {
		data.Ratings = make(map[string][]domain.Rating, len(inStock))
		for _, product := range inStock {
			reviews, err := s.ratings.ListByProduct(ctx, product.ID)
			if err != nil {
				return StorefrontData{}, err
			}
			if len(reviews) > 0 {
				data.Ratings[product.ID] = reviews
			}
		}
	}
	s.cache.WarnOnError(ctx, s.cache.SetJSON(ctx, cacheKey, data))
	return data, nil
}

// RegisterStore files a seller application. New stores start pending and
// inactive until approved.
func (s *storeService) RegisterStore(ctx context.Context, cmd RegisterStoreCommand) (domain.Store, error) {
	if strings.TrimSpace(cmd.Shopper.UserID) == "" {
		return domain.Store{}, ErrStoreInvalidInput
	}
	name := strings.TrimSpace(cmd.Name)
	username := strings.ToLower(strings.TrimSpace(cmd.Username))
	if name == "" || !usernamePattern.MatchString(username) {
		return domain.Store{}, fmt.Errorf("%w: name and username are required", ErrStoreInvalidInput)
	}

	store := domain.Store{
		ID:          "store_" + s.idGen(),
		OwnerUserID: cmd.Shopper.UserID,
		Name:        name,
		Username:    username,
		Description: strings.TrimSpace(cmd.Description),
		Email:       strings.TrimSpace(cmd.Email),
		Contact:     strings.TrimSpace(cmd.Contact),
		Address:     strings.TrimSpace(cmd.Address),
		Logo:        strings.TrimSpace(cmd.Logo),
		Status:      domain.StoreStatusPending,
		IsActive:    false,
	}

	saved, err := s.stores.Insert(ctx, store)
	if err != nil {
		if repositories.IsConflict(err) {
			if _, ownErr := s.stores.FindByOwner(ctx, cmd.Shopper.UserID); ownErr == nil {
				return domain.Store{}, ErrStoreAlreadyRegistered
			}
			return domain.Store{}, ErrStoreUsernameTaken
		}
		return domain.Store{}, err
	}

	s.cache.WarnOnError(ctx, s.cache.Invalidate(ctx, storefrontCacheKey(username)))
	return saved, nil
}

// GetOwnStore returns the store owned by the shopper, whatever its status.
func (s *storeService) GetOwnStore(ctx context.Context, shopper Shopper) (domain.Store, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return domain.Store{}, ErrStoreInvalidInput
	}
	store, err := s.stores.FindByOwner(ctx, shopper.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Store{}, ErrStoreNotFound
		}
		return domain.Store{}, err
	}
	return store, nil
}

func storefrontCacheKey(username string) string {
	return "storefront:" + username
}
