package domain

import "time"

// PaymentMethod enumerates the supported checkout payment methods.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

// Valid reports whether the payment method is one the checkout accepts.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodStripe
}

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "ORDER_PLACED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// StoreStatus tracks seller onboarding.
type StoreStatus string

const (
	StoreStatusPending  StoreStatus = "pending"
	StoreStatusApproved StoreStatus = "approved"
	StoreStatusRejected StoreStatus = "rejected"
)

// Cart maps product IDs to quantities. A zero quantity removes the entry.
type Cart map[string]int64

// TotalQuantity sums the quantities across all cart lines.
func (c Cart) TotalQuantity() int64 {
	var total int64
	for _, qty := range c {
		total += qty
	}
	return total
}

// User is the shopper profile persisted alongside the cart snapshot.
type User struct {
	ID        string    `firestore:"-"`
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Cart      Cart      `firestore:"cart"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Address is a shipping destination from the shopper's address book.
type Address struct {
	ID        string    `firestore:"-"`
	UserID    string    `firestore:"userId"`
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Street    string    `firestore:"street"`
	City      string    `firestore:"city"`
	State     string    `firestore:"state"`
	ZIP       string    `firestore:"zip"`
	Country   string    `firestore:"country"`
	Phone     string    `firestore:"phone"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// Coupon is a discount code. The document ID is the upper-cased code.
type Coupon struct {
	Code         string    `firestore:"code"`
	Description  string    `firestore:"description"`
	DiscountPct  int64     `firestore:"discountPct"`
	ForNewUsers  bool      `firestore:"forNewUsers"`
	ForMembers   bool      `firestore:"forMembers"`
	IsPublic     bool      `firestore:"isPublic"`
	ExpiresAt    time.Time `firestore:"expiresAt"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// Expired reports whether the coupon is past its expiry. A coupon expiring
// at exactly the given instant is already expired.
func (c Coupon) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// AppliedCoupon is the snapshot of a coupon denormalised onto an order at
// placement, so later coupon edits never rewrite order history.
type AppliedCoupon struct {
	Code        string `firestore:"code"`
	DiscountPct int64  `firestore:"discountPct"`
	ForNewUsers bool   `firestore:"forNewUsers"`
	ForMembers  bool   `firestore:"forMembers"`
}

// Product is a listed item. Prices are minor currency units.
type Product struct {
	ID          string    `firestore:"-"`
	StoreID     string    `firestore:"storeId"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	MRPMinor    int64     `firestore:"mrpMinor"`
	PriceMinor  int64     `firestore:"priceMinor"`
	Images      []string  `firestore:"images"`
	Category    string    `firestore:"category"`
	InStock     bool      `firestore:"inStock"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// Store is a seller storefront. Usernames are unique, lower-cased.
type Store struct {
	ID          string      `firestore:"-"`
	OwnerUserID string      `firestore:"ownerUserId"`
	Name        string      `firestore:"name"`
	Username    string      `firestore:"username"`
	Description string      `firestore:"description"`
	Email       string      `firestore:"email"`
	Contact     string      `firestore:"contact"`
	Address     string      `firestore:"address"`
	Logo        string      `firestore:"logo"`
	Status      StoreStatus `firestore:"status"`
	IsActive    bool        `firestore:"isActive"`
	CreatedAt   time.Time   `firestore:"createdAt"`
	UpdatedAt   time.Time   `firestore:"updatedAt"`
}

// OrderItem is a single product line within an order.
type OrderItem struct {
	ProductID  string `firestore:"productId"`
	Name       string `firestore:"name"`
	Quantity   int64  `firestore:"quantity"`
	PriceMinor int64  `firestore:"priceMinor"`
}

// Order is a per-store slice of a checkout. One checkout produces one
// order per distinct store present in the cart.
type Order struct {
	ID            string         `firestore:"-"`
	UserID        string         `firestore:"userId"`
	StoreID       string         `firestore:"storeId"`
	AddressID     string         `firestore:"addressId"`
	Address       Address        `firestore:"address"`
	Items         []OrderItem    `firestore:"items"`
	TotalMinor    int64          `firestore:"totalMinor"`
	PaymentMethod PaymentMethod  `firestore:"paymentMethod"`
	IsPaid        bool           `firestore:"isPaid"`
	IsCouponUsed  bool           `firestore:"isCouponUsed"`
	CouponCode    string         `firestore:"couponCode"`
	Coupon        *AppliedCoupon `firestore:"coupon,omitempty"`
	Status        OrderStatus    `firestore:"status"`
	CreatedAt     time.Time      `firestore:"createdAt"`
	UpdatedAt     time.Time      `firestore:"updatedAt"`
}

// Rating is a review left for a product purchased in a specific order.
// The document ID is orderID_productID which enforces one rating per
// product per order.
type Rating struct {
	ID        string    `firestore:"-"`
	UserID    string    `firestore:"userId"`
	ProductID string    `firestore:"productId"`
	OrderID   string    `firestore:"orderId"`
	Score     int       `firestore:"score"`
	Review    string    `firestore:"review"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}
