package vote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"easyfood/internal/domain/poll"
)

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []Vote
}

func (r *fakeVoteRepo) Create(ctx context.Context, v *Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, *v)
	return nil
}

func (r *fakeVoteRepo) HasUserVoted(ctx context.Context, pollID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.PollID == pollID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVoteRepo) CountByPoll(ctx context.Context, pollID string) (map[string]int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	var total int64
	for _, v := range r.votes {
		if v.PollID == pollID {
			counts[v.Restaurant]++
			total++
		}
	}
	return counts, total, nil
}

type fakePollRepo struct {
	polls map[string]*poll.Poll
}

func (r *fakePollRepo) Create(ctx context.Context, p *poll.Poll) error { return nil }

func (r *fakePollRepo) GetByID(ctx context.Context, id string) (*poll.Poll, error) {
	p, ok := r.polls[id]
	if !ok {
		return nil, poll.ErrNotFound
	}
	return p, nil
}

func (r *fakePollRepo) List(ctx context.Context) ([]poll.Poll, error) { return nil, nil }
func (r *fakePollRepo) Delete(ctx context.Context, id string) error   { return nil }
func (r *fakePollRepo) SetOrderingEndsAt(ctx context.Context, id string, endsAt time.Time) error {
	return nil
}
func (r *fakePollRepo) SetSelectedRestaurant(ctx context.Context, id, name string) error { return nil }
func (r *fakePollRepo) SetRestaurantOptions(ctx context.Context, id string, opts []poll.RestaurantOption) error {
	return nil
}
func (r *fakePollRepo) Subscribe(ctx context.Context, id string, fn func(*poll.Poll)) (func(), error) {
	return func() {}, nil
}

func newVoteService() (*Service, *fakeVoteRepo) {
	repo := &fakeVoteRepo{}
	polls := &fakePollRepo{polls: map[string]*poll.Poll{
		"p1": {
			ID:    "p1",
			Title: "Lunch",
			RestaurantOptions: []poll.RestaurantOption{
				{Name: "Pizza Corner"},
				{Name: "Sushi Bar"},
			},
		},
	}}
	return NewService(repo, polls), repo
}

func TestVote(t *testing.T) {
	svc, repo := newVoteService()
	ctx := context.Background()

	if err := svc.Vote(ctx, "p1", "Pizza Corner", "u1"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if len(repo.votes) != 1 {
		t.Fatalf("expected one recorded vote, got %d", len(repo.votes))
	}
}

func TestVoteRejectsUnknownOption(t *testing.T) {
	svc, _ := newVoteService()

	err := svc.Vote(context.Background(), "p1", "Kebab Town", "u1")
	if !errors.Is(err, ErrOptionNotInPoll) {
		t.Fatalf("expected ErrOptionNotInPoll, got %v", err)
	}
}

func TestVoteRejectsSecondVote(t *testing.T) {
	svc, _ := newVoteService()
	ctx := context.Background()

	if err := svc.Vote(ctx, "p1", "Pizza Corner", "u1"); err != nil {
		t.Fatal(err)
	}
	err := svc.Vote(ctx, "p1", "Sushi Bar", "u1")
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestVoteUnknownPoll(t *testing.T) {
	svc, _ := newVoteService()

	err := svc.Vote(context.Background(), "missing", "Pizza Corner", "u1")
	if !errors.Is(err, poll.ErrNotFound) {
		t.Fatalf("expected poll.ErrNotFound, got %v", err)
	}
}

func TestResultsPercentages(t *testing.T) {
	svc, _ := newVoteService()
	ctx := context.Background()

	for i, pick := range []string{"Pizza Corner", "Pizza Corner", "Sushi Bar", "Pizza Corner"} {
		if err := svc.Vote(ctx, "p1", pick, "u"+string(rune('1'+i))); err != nil {
			t.Fatal(err)
		}
	}

	results, total, err := svc.Results(ctx, "p1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Restaurant] = r
	}
	if r := byName["Pizza Corner"]; r.Votes != 3 || r.Percentage != 75 {
		t.Fatalf("pizza result = %+v", r)
	}
	if r := byName["Sushi Bar"]; r.Votes != 1 || r.Percentage != 25 {
		t.Fatalf("sushi result = %+v", r)
	}
}

func TestResultsEmptyPoll(t *testing.T) {
	svc, _ := newVoteService()

	results, total, err := svc.Results(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(results) != 0 {
		t.Fatalf("expected empty results, got %v total %d", results, total)
	}
}
