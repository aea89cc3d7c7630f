package postgres

import (
	"context"
	"database/sql"
	"time"

	"easyfood/internal/domain/vote"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

func (r *VoteRepo) Create(ctx context.Context, v *vote.Vote) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO votes (poll_id, user_id, restaurant, created_at)
        VALUES ($1, $2, $3, $4)
    `, v.PollID, v.UserID, v.Restaurant, v.CreatedAt)
	return err
}

func (r *VoteRepo) HasUserVoted(ctx context.Context, pollID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2)
    `, pollID, userID).Scan(&exists)
	return exists, err
}

func (r *VoteRepo) CountByPoll(ctx context.Context, pollID string) (map[string]int64, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT restaurant, COUNT(*) FROM votes
        WHERE poll_id = $1 GROUP BY restaurant
    `, pollID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var total int64
	for rows.Next() {
		var restaurant string
		var c int64
		if err := rows.Scan(&restaurant, &c); err != nil {
			return nil, 0, err
		}
		counts[restaurant] = c
		total += c
	}
	return counts, total, rows.Err()
}
