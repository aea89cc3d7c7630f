package vote

import (
	"context"
	"time"
)

// Vote is one user's pick among a poll's restaurant options.
type Vote struct {
	PollID     string    `json:"poll_id"`
	UserID     string    `json:"user_id"`
	Restaurant string    `json:"restaurant"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, v *Vote) error
	HasUserVoted(ctx context.Context, pollID, userID string) (bool, error)
	CountByPoll(ctx context.Context, pollID string) (map[string]int64, int64, error)
}
