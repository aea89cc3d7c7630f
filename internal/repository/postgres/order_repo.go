package postgres

import (
	"context"
	"database/sql"
	"errors"

	"easyfood/internal/domain/order"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) GetUserOrder(ctx context.Context, pollID, userID string) (*order.Order, error) {
	o := &order.Order{}
	err := r.db.QueryRowContext(ctx, `
        SELECT user_id, dish, notes, cost, created_at
        FROM orders WHERE poll_id = $1 AND user_id = $2
    `, pollID, userID).Scan(&o.UserID, &o.Dish, &o.Notes, &o.Cost, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create is conditional: the primary key makes the existence check and the
// insert one atomic write, so two racing submissions cannot both create.
func (r *OrderRepo) Create(ctx context.Context, pollID string, o *order.Order) error {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO orders (poll_id, user_id, dish, notes, cost, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (poll_id, user_id) DO NOTHING
    `, pollID, o.UserID, o.Dish, o.Notes, o.Cost, o.CreatedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return order.ErrExists
	}
	return nil
}

func (r *OrderRepo) Update(ctx context.Context, pollID string, o *order.Order) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders SET dish = $1, notes = $2, cost = $3, created_at = $4
        WHERE poll_id = $5 AND user_id = $6
    `, o.Dish, o.Notes, o.Cost, o.CreatedAt, pollID, o.UserID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, pollID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM orders WHERE poll_id = $1 AND user_id = $2
    `, pollID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) ListByPoll(ctx context.Context, pollID string) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, dish, notes, cost, created_at
        FROM orders WHERE poll_id = $1
        ORDER BY created_at, user_id
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []order.Order{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.UserID, &o.Dish, &o.Notes, &o.Cost, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *OrderRepo) Subscribe(ctx context.Context, pollID string, fn func([]order.Order)) (func(), error) {
	cancel := watch(func(ctx context.Context) ([]order.Order, error) {
		return r.ListByPoll(ctx, pollID)
	}, fn)

	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		orig := cancel
		cancel = func() {
			stop()
			orig()
		}
	}
	return cancel, nil
}
