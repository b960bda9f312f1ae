package cart

import (
	"context"
	"sync"
)

// Manager hands out one Store per cart ID, rehydrating from the backend on
// first access. Stores are cached so repeated requests from the same
// visitor see the same in-memory cart.
type Manager struct {
	backend Backend

	mu   sync.Mutex
	open map[string]*Store
}

func NewManager(backend Backend) *Manager {
	return &Manager{
		backend: backend,
		open:    make(map[string]*Store),
	}
}

// Get returns the cart for the given ID, opening it if necessary.
func (m *Manager) Get(ctx context.Context, cartID string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.open[cartID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Open outside the lock; the backend read may be slow.
	s, err := Open(ctx, cartID, m.backend)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.open[cartID]; ok {
		return existing, nil
	}
	m.open[cartID] = s
	return s, nil
}
