package memory

import (
	"context"
	"sync"
	"time"

	"easyfood/internal/domain/vote"
)

type VoteStore struct {
	mu    sync.Mutex
	votes map[string]map[string]*vote.Vote
}

func NewVoteStore() *VoteStore {
	return &VoteStore{votes: make(map[string]map[string]*vote.Vote)}
}

func (s *VoteStore) Create(ctx context.Context, v *vote.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.votes[v.PollID]
	if !ok {
		byUser = make(map[string]*vote.Vote)
		s.votes[v.PollID] = byUser
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	cp := *v
	byUser[v.UserID] = &cp
	return nil
}

func (s *VoteStore) HasUserVoted(ctx context.Context, pollID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.votes[pollID][userID]
	return ok, nil
}

func (s *VoteStore) CountByPoll(ctx context.Context, pollID string) (map[string]int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	var total int64
	for _, v := range s.votes[pollID] {
		counts[v.Restaurant]++
		total++
	}
	return counts, total, nil
}
