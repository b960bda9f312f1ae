package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/example/shopfront/internal/checkout"
	"github.com/example/shopfront/internal/email"
	"github.com/example/shopfront/internal/event"
	"github.com/example/shopfront/internal/identity"
)

// Mailer is the slice of the email service the handler needs.
type Mailer interface {
	SendOrderConfirmation(to, name, orderID string, total int, lines []email.OrderLine) error
}

// UserDirectory resolves the recipient of order notifications.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (identity.User, error)
}

// Handler turns storefront events into emails. It only reacts to
// OrderPlaced; other event types pass through untouched.
type Handler struct {
	mailer Mailer
	users  UserDirectory
}

func NewHandler(mailer Mailer, users UserDirectory) *Handler {
	return &Handler{mailer: mailer, users: users}
}

// HandleEvent processes one envelope from the event bus.
func (h *Handler) HandleEvent(ctx context.Context, env event.Envelope) error {
	if env.Type != event.TypeOrderPlaced {
		return nil
	}

	var placed checkout.OrderPlaced
	if err := env.Decode(&placed); err != nil {
		return err
	}

	user, err := h.users.GetUser(ctx, placed.UserID)
	if err != nil {
		// The order exists regardless; missing recipients are logged, not
		// retried forever.
		log.Printf("[Notifier] No recipient for order %s (user %s): %v", placed.OrderID, placed.UserID, err)
		return nil
	}

	lines := make([]email.OrderLine, len(placed.Lines))
	for i, l := range placed.Lines {
		lines[i] = email.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(user.Email, user.Name, placed.OrderID, placed.Total, lines); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", placed.OrderID, err)
	}

	log.Printf("[Notifier] Sent order confirmation for %s to %s", placed.OrderID, user.Email)
	return nil
}
