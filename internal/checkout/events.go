package checkout

import "time"

// OrderPlaced is published after an order has been durably written.
type OrderPlaced struct {
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id"`
	Total    int       `json:"total"`
	Currency string    `json:"currency"`
	Lines    []Line    `json:"lines"`
	PlacedAt time.Time `json:"placed_at"`
}
