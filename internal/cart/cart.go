// Package cart holds the customer's in-progress order. Every mutation is
// persisted immediately so a restart restores the cart as it was.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/marhaba-kitchen/storefront/internal/storage"
)

// Item is a menu item as it appears in the cart.
type Item struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	NameAr string          `json:"nameAr"`
	Price  decimal.Decimal `json:"price"`
}

// Line is an item together with its quantity.
type Line struct {
	Item
	Quantity int `json:"quantity"`
}

// Store is the cart. Mutations all funnel through the UI event loop, so
// it does no locking of its own.
type Store struct {
	st    storage.Store
	lines []Line
}

// NewStore rehydrates the cart from persisted state. Missing or corrupt
// state yields an empty cart.
func NewStore(st storage.Store) *Store {
	s := &Store{st: st}
	var lines []Line
	if st.Get(storage.KeyCart, &lines) {
		s.lines = lines
	}
	return s
}

// Add merges the item into the cart: an item already present has its
// quantity increased, a new item is appended. Non-positive quantities
// are ignored.
func (s *Store) Add(item Item, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range s.lines {
		if s.lines[i].ID == item.ID {
			s.lines[i].Quantity += quantity
			s.persist()
			return
		}
	}
	s.lines = append(s.lines, Line{Item: item, Quantity: quantity})
	s.persist()
}

// Remove drops the item from the cart regardless of quantity.
func (s *Store) Remove(itemID string) {
	for i := range s.lines {
		if s.lines[i].ID == itemID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist()
			return
		}
	}
}

// SetQuantity replaces the item's quantity. Zero or negative removes the
// item entirely.
func (s *Store) SetQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		s.Remove(itemID)
		return
	}
	for i := range s.lines {
		if s.lines[i].ID == itemID {
			s.lines[i].Quantity = quantity
			s.persist()
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.lines = nil
	s.persist()
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is the sum of price times quantity across all lines.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// DisplayTotal renders the total with two decimal places.
func (s *Store) DisplayTotal() string {
	return s.Total().StringFixed(2)
}

// Count is the total number of units across all lines.
func (s *Store) Count() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) persist() {
	s.st.Set(storage.KeyCart, s.lines)
}
