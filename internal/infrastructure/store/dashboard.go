package store

import "database/sql"

// DashboardStore composes the per-entity stores into the admin dashboard's
// view of the database.
type DashboardStore struct {
	*OrderStore
	*ProductStore
	*UserStore
}

func NewDashboardStore(db *sql.DB) *DashboardStore {
	return &DashboardStore{
		OrderStore:   NewOrderStore(db),
		ProductStore: NewProductStore(db),
		UserStore:    NewUserStore(db),
	}
}
