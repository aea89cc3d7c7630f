package order

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("order not found")
	ErrExists   = errors.New("user already has an order in this poll")
)

// Order is one user's dish selection within a poll. UserName is derived from
// the user lookup for display and never persisted.
type Order struct {
	UserID    string    `json:"user_id"`
	Dish      string    `json:"dish"`
	Notes     string    `json:"notes,omitempty"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name,omitempty"`
}

// Update carries partial order fields for an administrative override.
type Update struct {
	Dish  *string  `json:"dish,omitempty"`
	Notes *string  `json:"notes,omitempty"`
	Cost  *float64 `json:"cost,omitempty"`
}

// Apply merges the set fields of u over o.
func (u Update) Apply(o *Order) {
	if u.Dish != nil {
		o.Dish = *u.Dish
	}
	if u.Notes != nil {
		o.Notes = *u.Notes
	}
	if u.Cost != nil {
		o.Cost = *u.Cost
	}
}

// TotalCost sums the cost of all given orders.
func TotalCost(orders []Order) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.Cost
	}
	return sum
}

type Repository interface {
	// GetUserOrder returns ErrNotFound when the user has no order in the poll.
	GetUserOrder(ctx context.Context, pollID, userID string) (*Order, error)
	// Create fails with ErrExists when the user already has an order in the
	// poll; the check and the insert are one conditional write.
	Create(ctx context.Context, pollID string, o *Order) error
	Update(ctx context.Context, pollID string, o *Order) error
	Delete(ctx context.Context, pollID, userID string) error
	ListByPoll(ctx context.Context, pollID string) ([]Order, error)
	// Subscribe delivers the full order list of the poll on every change.
	// The returned func cancels the subscription.
	Subscribe(ctx context.Context, pollID string, fn func([]Order)) (func(), error)
}
