package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfront/internal/catalog"
	"github.com/example/shopfront/internal/identity"
)

type pair struct{ userID, productID string }

// fakeStore keeps the presence set in a map, mirroring the conditional
// insert/delete contract.
type fakeStore struct {
	set      map[pair]bool
	AddCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{set: make(map[pair]bool)}
}

func (f *fakeStore) Add(_ context.Context, userID, productID string) (bool, error) {
	f.AddCalls++
	p := pair{userID, productID}
	if f.set[p] {
		return false, nil
	}
	f.set[p] = true
	return true, nil
}

func (f *fakeStore) Remove(_ context.Context, userID, productID string) (bool, error) {
	p := pair{userID, productID}
	if !f.set[p] {
		return false, nil
	}
	delete(f.set, p)
	return true, nil
}

func (f *fakeStore) ProductIDs(_ context.Context, userID string, filter []string) ([]string, error) {
	var out []string
	for _, id := range filter {
		if f.set[pair{userID, id}] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) Products(_ context.Context, userID string) ([]catalog.Product, error) {
	var out []catalog.Product
	for p := range f.set {
		if p.userID == userID {
			out = append(out, catalog.Product{ID: p.productID})
		}
	}
	return out, nil
}

type fakeViews struct {
	Invalidated []string
}

func (f *fakeViews) Invalidate(_ context.Context, paths ...string) error {
	f.Invalidated = append(f.Invalidated, paths...)
	return nil
}

var owner = identity.Identity{ID: "user-123", Role: identity.RoleUser}

// ============================================
// Toggle Tests
// ============================================

func TestService_Toggle_FlipsMembership(t *testing.T) {
	store := newFakeStore()
	views := &fakeViews{}
	svc := NewService(store, views)
	ctx := context.Background()

	status, err := svc.Toggle(ctx, owner, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAdded, status)
	assert.True(t, store.set[pair{"user-123", "prod-1"}])

	status, err = svc.Toggle(ctx, owner, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRemoved, status)
	assert.False(t, store.set[pair{"user-123", "prod-1"}])

	assert.Contains(t, views.Invalidated, Path("user-123"))
	assert.Contains(t, views.Invalidated, "/products/prod-1")
}

func TestService_Toggle_TwiceRestoresOriginalState(t *testing.T) {
	tests := []struct {
		name            string
		initiallyListed bool
	}{
		{"starting absent", false},
		{"starting present", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.initiallyListed {
				store.set[pair{"user-123", "prod-1"}] = true
			}
			svc := NewService(store, &fakeViews{})
			ctx := context.Background()

			_, err := svc.Toggle(ctx, owner, "prod-1")
			require.NoError(t, err)
			_, err = svc.Toggle(ctx, owner, "prod-1")
			require.NoError(t, err)

			assert.Equal(t, tt.initiallyListed, store.set[pair{"user-123", "prod-1"}])
		})
	}
}

func TestService_Toggle_Unauthenticated(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeViews{})

	_, err := svc.Toggle(context.Background(), identity.Identity{}, "prod-1")

	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
	assert.Zero(t, store.AddCalls, "no mutation may happen without an identity")
}

func TestService_Toggle_EmptyProduct(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeViews{})

	_, err := svc.Toggle(context.Background(), owner, "")

	assert.ErrorIs(t, err, ErrInvalidProduct)
}

// ============================================
// StatusFor Tests
// ============================================

func TestService_StatusFor(t *testing.T) {
	store := newFakeStore()
	store.set[pair{"user-123", "prod-1"}] = true
	store.set[pair{"user-123", "prod-3"}] = true
	store.set[pair{"user-other", "prod-2"}] = true
	svc := NewService(store, &fakeViews{})

	status, err := svc.StatusFor(context.Background(), owner, []string{"prod-1", "prod-2", "prod-3"})

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"prod-1": true, "prod-3": true}, status)
}

func TestService_StatusFor_NoIdentity(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeViews{})

	status, err := svc.StatusFor(context.Background(), identity.Identity{}, []string{"prod-1"})

	require.NoError(t, err)
	assert.Empty(t, status)
}
