package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCart is returned by Backend.Load when the backend holds nothing for
// the given cart ID. Open treats it as an empty cart.
var ErrNoCart = errors.New("cart not found")

// Backend is the durable key-value store behind a cart. It is written on
// every mutation and read once when the cart is opened.
type Backend interface {
	Load(ctx context.Context, cartID string) ([]Line, error)
	Save(ctx context.Context, cartID string, lines []Line) error
	Delete(ctx context.Context, cartID string) error
}

// FileBackend persists each cart as one JSON document in a directory.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cart directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(cartID string) string {
	// Cart IDs are server-issued UUIDs, but never trust them as paths.
	return filepath.Join(b.dir, filepath.Base(cartID)+".json")
}

func (b *FileBackend) Load(_ context.Context, cartID string) ([]Line, error) {
	data, err := os.ReadFile(b.path(cartID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCart
		}
		return nil, fmt.Errorf("read cart file: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode cart file: %w", err)
	}
	return lines, nil
}

func (b *FileBackend) Save(_ context.Context, cartID string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := os.WriteFile(b.path(cartID), data, 0o600); err != nil {
		return fmt.Errorf("write cart file: %w", err)
	}
	return nil
}

func (b *FileBackend) Delete(_ context.Context, cartID string) error {
	if err := os.Remove(b.path(cartID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cart file: %w", err)
	}
	return nil
}
