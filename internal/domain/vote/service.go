package vote

import (
	"context"
	"errors"

	"easyfood/internal/domain/poll"
)

var (
	ErrAlreadyVoted    = errors.New("user already voted in this poll")
	ErrOptionNotInPoll = errors.New("restaurant is not an option of this poll")
)

type Service struct {
	repo  Repository
	polls poll.Repository
}

func NewService(repo Repository, polls poll.Repository) *Service {
	return &Service{repo: repo, polls: polls}
}

func (s *Service) Vote(ctx context.Context, pollID, restaurant, userID string) error {
	p, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	valid := false
	for _, opt := range p.RestaurantOptions {
		if opt.Name == restaurant {
			valid = true
			break
		}
	}
	if !valid {
		return ErrOptionNotInPoll
	}

	ok, err := s.repo.HasUserVoted(ctx, pollID, userID)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyVoted
	}

	v := &Vote{
		PollID:     pollID,
		UserID:     userID,
		Restaurant: restaurant,
	}

	return s.repo.Create(ctx, v)
}

type Result struct {
	Restaurant string  `json:"restaurant"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

func (s *Service) Results(ctx context.Context, pollID string) ([]Result, int64, error) {
	counts, total, err := s.repo.CountByPoll(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}

	results := make([]Result, 0, len(counts))
	for restaurant, c := range counts {
		var p float64
		if total > 0 {
			p = float64(c) * 100.0 / float64(total)
		}
		results = append(results, Result{
			Restaurant: restaurant,
			Votes:      c,
			Percentage: p,
		})
	}

	return results, total, nil
}
