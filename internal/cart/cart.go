package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidProduct = errors.New("product_id is required")

// Line is one product in a cart. Name, UnitPrice and ImageRef are snapshots
// taken at the moment the product was added; UnitPrice is in minor currency
// units.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"image_ref,omitempty"`
}

type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeIncreased ChangeKind = "increased"
	ChangeUpdated   ChangeKind = "updated"
	ChangeRemoved   ChangeKind = "removed"
	ChangeCleared   ChangeKind = "cleared"
)

// Change describes a mutation for observers (toasts, logging, metrics).
type Change struct {
	Kind      ChangeKind
	ProductID string
	Name      string
}

type Observer func(Change)

// Store holds the items a visitor intends to buy. It is the authoritative
// view of the cart, independent of any server-side order state until
// checkout. Every mutation is written through to the backend so the cart
// survives a restart; Open restores it verbatim.
//
// Invariants: at most one line per product, no line with quantity < 1.
type Store struct {
	mu        sync.Mutex
	id        string
	lines     []Line
	backend   Backend
	observers []Observer
}

// Open loads the cart identified by id from the backend, or starts an
// empty one if the backend has never seen it.
func Open(ctx context.Context, id string, backend Backend) (*Store, error) {
	lines, err := backend.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNoCart) {
			return nil, fmt.Errorf("load cart %s: %w", id, err)
		}
		lines = nil
	}
	return &Store{id: id, lines: lines, backend: backend}, nil
}

// Subscribe registers an observer for subsequent mutations.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) ID() string { return s.id }

// Lines returns a snapshot of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is the sum of unit price times quantity over all lines.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.UnitPrice * l.Quantity
	}
	return total
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Add inserts the product with quantity 1, or increments the quantity of
// the existing line by 1. The incoming quantity on item is ignored.
func (s *Store) Add(ctx context.Context, item Line) error {
	if item.ProductID == "" {
		return ErrInvalidProduct
	}

	s.mu.Lock()
	change := Change{Kind: ChangeAdded, ProductID: item.ProductID, Name: item.Name}
	if i := s.index(item.ProductID); i >= 0 {
		s.lines[i].Quantity++
		change.Kind = ChangeIncreased
		change.Name = s.lines[i].Name
	} else {
		item.Quantity = 1
		s.lines = append(s.lines, item)
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(change)
	return err
}

// Remove deletes the line for the product. Removing a product that is not
// in the cart is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	i := s.index(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	name := s.lines[i].Name
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRemoved, ProductID: productID, Name: name})
	return err
}

// SetQuantity overwrites the quantity of the product's line. A quantity
// below 1 is equivalent to Remove. Quantity is not clamped to stock.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	i := s.index(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.lines[i].Quantity = quantity
	name := s.lines[i].Name
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeUpdated, ProductID: productID, Name: name})
	return err
}

// Clear empties the cart. Callers invoke this only after a confirmed
// successful order placement.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	err := s.backend.Delete(ctx, s.id)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeCleared})
	if err != nil {
		return fmt.Errorf("clear cart %s: %w", s.id, err)
	}
	return nil
}

// index returns the position of the product's line, or -1.
func (s *Store) index(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// persistLocked writes the current contents through to the backend. The
// in-memory state is kept even when the write fails so the caller can
// retry without losing the cart.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.id, s.lines); err != nil {
		return fmt.Errorf("persist cart %s: %w", s.id, err)
	}
	return nil
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	observers := s.observers
	s.mu.Unlock()
	for _, o := range observers {
		o(c)
	}
}
