package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"easyfood/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Create(ctx context.Context, p *poll.Poll) error {
	opts, err := json.Marshal(p.RestaurantOptions)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO polls (id, title, selected_restaurant, restaurant_options, ordering_ends_at, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	return r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Title,
		p.SelectedRestaurant,
		opts,
		p.OrderingEndsAt,
		p.CreatedBy,
	).Scan(&p.CreatedAt)
}

func (r *PollRepo) GetByID(ctx context.Context, id string) (*poll.Poll, error) {
	p := &poll.Poll{}
	var opts []byte
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, selected_restaurant, restaurant_options, ordering_ends_at, created_by, created_at
        FROM polls WHERE id = $1
    `, id).Scan(
		&p.ID, &p.Title, &p.SelectedRestaurant, &opts,
		&p.OrderingEndsAt, &p.CreatedBy, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, poll.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Options stored by older versions may be bare strings; the custom
	// decoder normalizes them.
	if err := json.Unmarshal(opts, &p.RestaurantOptions); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PollRepo) List(ctx context.Context) ([]poll.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, title, selected_restaurant, restaurant_options, ordering_ends_at, created_by, created_at
        FROM polls ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []poll.Poll
	for rows.Next() {
		var p poll.Poll
		var opts []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.SelectedRestaurant, &opts,
			&p.OrderingEndsAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(opts, &p.RestaurantOptions); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *PollRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return poll.ErrNotFound
	}
	return nil
}

func (r *PollRepo) SetOrderingEndsAt(ctx context.Context, id string, endsAt time.Time) error {
	return r.exec(ctx, `UPDATE polls SET ordering_ends_at = $1 WHERE id = $2`, endsAt, id)
}

func (r *PollRepo) SetSelectedRestaurant(ctx context.Context, id, name string) error {
	return r.exec(ctx, `UPDATE polls SET selected_restaurant = $1 WHERE id = $2`, name, id)
}

func (r *PollRepo) SetRestaurantOptions(ctx context.Context, id string, opts []poll.RestaurantOption) error {
	encoded, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE polls SET restaurant_options = $1 WHERE id = $2`, encoded, id)
}

func (r *PollRepo) Subscribe(ctx context.Context, id string, fn func(*poll.Poll)) (func(), error) {
	cancel := watch(func(ctx context.Context) (*poll.Poll, error) {
		p, err := r.GetByID(ctx, id)
		if errors.Is(err, poll.ErrNotFound) {
			// A deleted poll is delivered to subscribers as nil.
			return nil, nil
		}
		return p, err
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

func (r *PollRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return poll.ErrNotFound
	}
	return nil
}
