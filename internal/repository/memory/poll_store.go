package memory

import (
	"context"
	"sync"
	"time"

	"easyfood/internal/domain/poll"
)

// PollStore keeps poll documents in memory and pushes a snapshot to
// subscribers on every change, nil once the poll is deleted.
type PollStore struct {
	mu    sync.Mutex
	polls map[string]*poll.Poll
	subs  map[string]*fanout[*poll.Poll]
}

func NewPollStore() *PollStore {
	return &PollStore{
		polls: make(map[string]*poll.Poll),
		subs:  make(map[string]*fanout[*poll.Poll]),
	}
}

func (s *PollStore) Create(ctx context.Context, p *poll.Poll) error {
	s.mu.Lock()
	cp := clonePoll(p)
	s.polls[p.ID] = cp
	s.mu.Unlock()

	s.notify(p.ID)
	return nil
}

func (s *PollStore) GetByID(ctx context.Context, id string) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polls[id]
	if !ok {
		return nil, poll.ErrNotFound
	}
	return clonePoll(p), nil
}

func (s *PollStore) List(ctx context.Context) ([]poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]poll.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		res = append(res, *clonePoll(p))
	}
	return res, nil
}

func (s *PollStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.polls[id]; !ok {
		s.mu.Unlock()
		return poll.ErrNotFound
	}
	delete(s.polls, id)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *PollStore) SetOrderingEndsAt(ctx context.Context, id string, endsAt time.Time) error {
	return s.update(id, func(p *poll.Poll) {
		t := endsAt
		p.OrderingEndsAt = &t
	})
}

func (s *PollStore) SetSelectedRestaurant(ctx context.Context, id, name string) error {
	return s.update(id, func(p *poll.Poll) {
		p.SelectedRestaurant = name
	})
}

func (s *PollStore) SetRestaurantOptions(ctx context.Context, id string, opts []poll.RestaurantOption) error {
	return s.update(id, func(p *poll.Poll) {
		p.RestaurantOptions = append([]poll.RestaurantOption(nil), opts...)
	})
}

func (s *PollStore) Subscribe(ctx context.Context, id string, fn func(*poll.Poll)) (func(), error) {
	s.mu.Lock()
	f, ok := s.subs[id]
	if !ok {
		f = newFanout[*poll.Poll]()
		s.subs[id] = f
	}
	var initial *poll.Poll
	if p, ok := s.polls[id]; ok {
		initial = clonePoll(p)
	}
	// Seeding under the store lock keeps the initial snapshot ordered
	// against concurrent mutations.
	sub, cancel := f.subscribe(fn)
	sub.offer(initial)
	s.mu.Unlock()
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

func (s *PollStore) update(id string, mutate func(*poll.Poll)) error {
	s.mu.Lock()
	p, ok := s.polls[id]
	if !ok {
		s.mu.Unlock()
		return poll.ErrNotFound
	}
	mutate(p)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *PollStore) notify(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.subs[id]
	if !ok {
		return
	}
	var snapshot *poll.Poll
	if p, exists := s.polls[id]; exists {
		snapshot = clonePoll(p)
	}
	f.publish(snapshot)
}

func clonePoll(p *poll.Poll) *poll.Poll {
	cp := *p
	cp.RestaurantOptions = append([]poll.RestaurantOption(nil), p.RestaurantOptions...)
	if p.OrderingEndsAt != nil {
		t := *p.OrderingEndsAt
		cp.OrderingEndsAt = &t
	}
	return &cp
}
