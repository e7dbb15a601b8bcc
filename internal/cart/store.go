// Package cart holds the in-memory shopping cart owned by one user session.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot a line item is created from.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// LineItem is one product-and-quantity pairing. Name and UnitPrice are copied
// from the catalog when the item is first added and never re-read.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is UnitPrice × Quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingPolicy charges Fee while the subtotal is below FreeThreshold.
type ShippingPolicy struct {
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
}

// Cost returns the shipping charge for a subtotal.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// Summary is a consistent read of the cart contents and its derived totals.
type Summary struct {
	Items     []LineItem
	ItemCount int // sum of quantities
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// Store is the authoritative cart for one session. Line items are unique by
// product id and kept in insertion order; every quantity present is >= 1.
// Aggregates are recomputed on each read.
type Store struct {
	mu     sync.Mutex
	policy ShippingPolicy
	order  []string
	items  map[string]*LineItem
}

func NewStore(policy ShippingPolicy) *Store {
	return &Store{
		policy: policy,
		items:  make(map[string]*LineItem),
	}
}

// AddItem adds one unit of p, creating the line item on first add.
func (s *Store) AddItem(p Product) LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[p.ID]; ok {
		item.Quantity++
		return *item
	}

	item := &LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	}
	s.items[p.ID] = item
	s.order = append(s.order, p.ID)
	return *item
}

// UpdateQuantity sets the quantity of an existing line item. A quantity <= 0
// removes the item. Unknown ids are ignored; the result reports whether the
// item was present.
func (s *Store) UpdateQuantity(productID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[productID]
	if !ok {
		return false
	}
	if quantity <= 0 {
		s.removeLocked(productID)
		return true
	}
	item.Quantity = quantity
	return true
}

// RemoveItem deletes the line item if present and reports whether it was.
func (s *Store) RemoveItem(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[productID]; !ok {
		return false
	}
	s.removeLocked(productID)
	return true
}

func (s *Store) removeLocked(productID string) {
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.items = make(map[string]*LineItem)
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

func (s *Store) ShippingCost() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Cost(s.subtotalLocked())
}

// Total is Subtotal + ShippingCost.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.subtotalLocked()
	return subtotal.Add(s.policy.Cost(subtotal))
}

func (s *Store) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

func (s *Store) itemsLocked() []LineItem {
	out := make([]LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Quantity returns the quantity held for productID, or 0.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[productID]; ok {
		return item.Quantity
	}
	return 0
}

// Len is the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Summary reads items and totals under a single lock.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Store) summaryLocked() Summary {
	items := s.itemsLocked()
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	subtotal := s.subtotalLocked()
	shipping := s.policy.Cost(subtotal)
	return Summary{
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
	}
}

// Drain returns the Summary and empties the cart in one step, so two
// concurrent checkouts cannot both consume the same items.
func (s *Store) Drain() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.summaryLocked()
	s.order = nil
	s.items = make(map[string]*LineItem)
	return summary
}
