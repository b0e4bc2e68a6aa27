package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/payments"
	"github.com/swapnil12348/gocart/internal/platform/jobs"
	"github.com/swapnil12348/gocart/internal/repositories"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type repoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string       { return e.msg }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

func notFoundErr(what string) error {
	return &repoError{msg: what + " not found", notFound: true}
}

func conflictErr(what string) error {
	return &repoError{msg: what + " conflict", conflict: true}
}

type fakeUserRepo struct {
	users     map[string]domain.User
	carts     map[string]domain.Cart
	saveErr   error
	saveCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[string]domain.User{},
		carts: map[string]domain.Cart{},
	}
}

func (f *fakeUserRepo) Get(_ context.Context, userID string) (domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.User{}, notFoundErr("user")
	}
	return user, nil
}

func (f *fakeUserRepo) Ensure(_ context.Context, user domain.User) (domain.User, error) {
	if existing, ok := f.users[user.ID]; ok {
		return existing, nil
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetCart(_ context.Context, userID string) (domain.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return domain.Cart{}, nil
	}
	return cart, nil
}

func (f *fakeUserRepo) SaveCart(_ context.Context, userID string, cart domain.Cart) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[userID] = cart
	return nil
}

type fakeProductRepo struct {
	products map[string]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]domain.Product{}}
	for _, product := range products {
		repo.products[product.ID] = product
	}
	return repo
}

func (f *fakeProductRepo) FindByID(_ context.Context, productID string) (domain.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, notFoundErr("product")
	}
	return product, nil
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, productIDs []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	for _, id := range productIDs {
		if product, ok := f.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ListByStore(_ context.Context, storeID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range f.products {
		if product.StoreID == storeID {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) ListInStock(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range f.products {
		if product.InStock {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCouponRepo struct {
	coupons map[string]domain.Coupon
}

func newFakeCouponRepo(coupons ...domain.Coupon) *fakeCouponRepo {
	repo := &fakeCouponRepo{coupons: map[string]domain.Coupon{}}
	for _, coupon := range coupons {
		repo.coupons[strings.ToUpper(coupon.Code)] = coupon
	}
	return repo
}

func (f *fakeCouponRepo) FindByCode(_ context.Context, code string) (domain.Coupon, error) {
	coupon, ok := f.coupons[strings.ToUpper(code)]
	if !ok {
		return domain.Coupon{}, notFoundErr("coupon")
	}
	return coupon, nil
}

type fakeOrderRepo struct {
	orders    map[string]domain.Order
	placeErr  error
	lastPlace repositories.OrderPlacement
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: map[string]domain.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (f *fakeOrderRepo) Place(_ context.Context, userID string, placement repositories.OrderPlacement) error {
	if f.placeErr != nil {
		return f.placeErr
	}
	f.lastPlace = placement
	for _, order := range placement.Orders {
		order.UserID = userID
		f.orders[order.ID] = order
	}
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, notFoundErr("order")
	}
	return order, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) ListByStore(_ context.Context, storeID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if order.StoreID == storeID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, userID string, orderIDs []string) (int, error) {
	updated := 0
	for _, orderID := range orderIDs {
		order, ok := f.orders[orderID]
		if !ok || order.UserID != userID || order.IsPaid {
			continue
		}
		order.IsPaid = true
		f.orders[orderID] = order
		updated++
	}
	return updated, nil
}

func (f *fakeOrderRepo) DeleteUnpaid(_ context.Context, userID string, orderIDs []string) (int, error) {
	deleted := 0
	for _, orderID := range orderIDs {
		order, ok := f.orders[orderID]
		if !ok || order.UserID != userID || order.IsPaid {
			continue
		}
		delete(f.orders, orderID)
		deleted++
	}
	return deleted, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	order, ok := f.orders[orderID]
	if !ok {
		return notFoundErr("order")
	}
	order.Status = status
	f.orders[orderID] = order
	return nil
}

type fakeAddressRepo struct {
	addresses map[string]domain.Address
}

func newFakeAddressRepo(addresses ...domain.Address) *fakeAddressRepo {
	repo := &fakeAddressRepo{addresses: map[string]domain.Address{}}
	for _, address := range addresses {
		repo.addresses[address.ID] = address
	}
	return repo
}

func (f *fakeAddressRepo) Insert(_ context.Context, address domain.Address) (domain.Address, error) {
	if _, ok := f.addresses[address.ID]; ok {
		return domain.Address{}, conflictErr("address")
	}
	f.addresses[address.ID] = address
	return address, nil
}

func (f *fakeAddressRepo) ListByUser(_ context.Context, userID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, address := range f.addresses {
		if address.UserID == userID {
			out = append(out, address)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAddressRepo) FindByID(_ context.Context, userID, addressID string) (domain.Address, error) {
	address, ok := f.addresses[addressID]
	if !ok || address.UserID != userID {
		return domain.Address{}, notFoundErr("address")
	}
	return address, nil
}

type fakeStoreRepo struct {
	stores map[string]domain.Store
}

func newFakeStoreRepo(stores ...domain.Store) *fakeStoreRepo {
	repo := &fakeStoreRepo{stores: map[string]domain.Store{}}
	for _, store := range stores {
		repo.stores[store.ID] = store
	}
	return repo
}

func (f *fakeStoreRepo) Insert(_ context.Context, store domain.Store) (domain.Store, error) {
	for _, existing := range f.stores {
		if existing.Username == store.Username || existing.OwnerUserID == store.OwnerUserID {
			return domain.Store{}, conflictErr("store")
		}
	}
	f.stores[store.ID] = store
	return store, nil
}

func (f *fakeStoreRepo) FindByUsername(_ context.Context, username string) (domain.Store, error) {
	for _, store := range f.stores {
		if store.Username == username {
			return store, nil
		}
	}
	return domain.Store{}, notFoundErr("store")
}

func (f *fakeStoreRepo) FindByOwner(_ context.Context, ownerUserID string) (domain.Store, error) {
	for _, store := range f.stores {
		if store.OwnerUserID == ownerUserID {
			return store, nil
		}
	}
	return domain.Store{}, notFoundErr("store")
}

func (f *fakeStoreRepo) ListActive(_ context.Context) ([]domain.Store, error) {
	var out []domain.Store
	for _, store := range f.stores {
		if store.Status == domain.StoreStatusApproved && store.IsActive {
			out = append(out, store)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	ratings map[string]domain.Rating
}

func newFakeRatingRepo(ratings ...domain.Rating) *fakeRatingRepo {
	repo := &fakeRatingRepo{ratings: map[string]domain.Rating{}}
	for _, rating := range ratings {
		repo.ratings[rating.OrderID+"_"+rating.ProductID] = rating
	}
	return repo
}

func (f *fakeRatingRepo) Insert(_ context.Context, rating domain.Rating) (domain.Rating, error) {
	key := rating.OrderID + "_" + rating.ProductID
	if _, ok := f.ratings[key]; ok {
		return domain.Rating{}, conflictErr("rating")
	}
	rating.ID = key
	f.ratings[key] = rating
	return rating, nil
}

func (f *fakeRatingRepo) ListByProduct(_ context.Context, productID string) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, rating := range f.ratings {
		if rating.ProductID == productID {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ListByUser(_ context.Context, userID string) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, rating := range f.ratings {
		if rating.UserID == userID {
			out = append(out, rating)
		}
	}
	return out, nil
}

type fakePaymentProvider struct {
	lastReq payments.CheckoutSessionRequest
	session payments.CheckoutSession
	err     error
	calls   int
}

func (f *fakePaymentProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return payments.CheckoutSession{}, f.err
	}
	return f.session, nil
}

type fakeEventPublisher struct {
	events []jobs.OrderEvent
	err    error
}

func (f *fakeEventPublisher) PublishOrderEvent(_ context.Context, event jobs.OrderEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, event)
	return fmt.Sprintf("msg-%d", len(f.events)), nil
}

func (f *fakeEventPublisher) eventsOfType(eventType string) []jobs.OrderEvent {
	var out []jobs.OrderEvent
	for _, event := range f.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
