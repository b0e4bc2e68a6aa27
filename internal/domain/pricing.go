package domain

// DiscountMinor computes a percentage discount on a minor-unit subtotal,
// rounding half-up so the shopper never loses a unit to truncation.
func DiscountMinor(subtotalMinor, discountPct int64) int64 {
	if subtotalMinor <= 0 || discountPct <= 0 {
		return 0
	}
	if discountPct >= 100 {
		return subtotalMinor
	}
	return (subtotalMinor*discountPct + 50) / 100
}

// ApplyDiscount returns the subtotal after the percentage discount.
func ApplyDiscount(subtotalMinor, discountPct int64) int64 {
	return subtotalMinor - DiscountMinor(subtotalMinor, discountPct)
}

// StoreGroup is the cart contents for a single store, in the order the
// products were first encountered while walking the cart.
type StoreGroup struct {
	StoreID       string
	Items         []OrderItem
	SubtotalMinor int64
}

// PricedGroup extends a StoreGroup with the charges applied at checkout.
type PricedGroup struct {
	StoreGroup
	DiscountMinor int64
	ShippingMinor int64
	TotalMinor    int64
}

// PricingInput carries everything needed to price a grouped cart.
type PricingInput struct {
	Groups           []StoreGroup
	DiscountPct      int64
	ShippingFeeMinor int64
	WaiveShipping    bool
}

// PriceGroups applies the coupon discount to every store group and charges
// the flat shipping fee exactly once, on the first group. Returns the priced
// groups and the grand total across all of them.
func PriceGroups(in PricingInput) ([]PricedGroup, int64) {
	priced := make([]PricedGroup, 0, len(in.Groups))
	var grandTotal int64

	for i, group := range in.Groups {
		discount := DiscountMinor(group.SubtotalMinor, in.DiscountPct)
		total := group.SubtotalMinor - discount

		var shipping int64
		if i == 0 && !in.WaiveShipping {
			shipping = in.ShippingFeeMinor
		}
		total += shipping

		priced = append(priced, PricedGroup{
			StoreGroup:    group,
			DiscountMinor: discount,
			ShippingMinor: shipping,
			TotalMinor:    total,
		})
		grandTotal += total
	}
	return priced, grandTotal
}

// GroupCartByStore walks the cart lines in the supplied order and groups
// them by the owning store, preserving first-encounter store ordering.
func GroupCartByStore(lines []OrderItem, storeByProduct map[string]string) []StoreGroup {
	var groups []StoreGroup
	index := make(map[string]int)

	for _, line := range lines {
		storeID := storeByProduct[line.ProductID]
		pos, ok := index[storeID]
		if !ok {
			pos = len(groups)
			index[storeID] = pos
			groups = append(groups, StoreGroup{StoreID: storeID})
		}
		groups[pos].Items = append(groups[pos].Items, line)
		groups[pos].SubtotalMinor += line.PriceMinor * line.Quantity
	}
	return groups
}
