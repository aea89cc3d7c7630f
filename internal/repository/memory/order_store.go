package memory

import (
	"context"
	"sort"
	"sync"

	"easyfood/internal/domain/order"
)

// OrderStore keeps per-poll orders in memory and pushes the full order list
// of the poll to subscribers on every change.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]map[string]*order.Order
	subs   map[string]*fanout[[]order.Order]
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]map[string]*order.Order),
		subs:   make(map[string]*fanout[[]order.Order]),
	}
}

func (s *OrderStore) GetUserOrder(ctx context.Context, pollID, userID string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pollID][userID]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *OrderStore) Create(ctx context.Context, pollID string, o *order.Order) error {
	s.mu.Lock()
	byUser, ok := s.orders[pollID]
	if !ok {
		byUser = make(map[string]*order.Order)
		s.orders[pollID] = byUser
	}
	if _, exists := byUser[o.UserID]; exists {
		s.mu.Unlock()
		return order.ErrExists
	}
	cp := *o
	byUser[o.UserID] = &cp
	s.mu.Unlock()

	s.notify(pollID)
	return nil
}

func (s *OrderStore) Update(ctx context.Context, pollID string, o *order.Order) error {
	s.mu.Lock()
	if _, ok := s.orders[pollID][o.UserID]; !ok {
		s.mu.Unlock()
		return order.ErrNotFound
	}
	cp := *o
	s.orders[pollID][o.UserID] = &cp
	s.mu.Unlock()

	s.notify(pollID)
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, pollID, userID string) error {
	s.mu.Lock()
	if _, ok := s.orders[pollID][userID]; !ok {
		s.mu.Unlock()
		return order.ErrNotFound
	}
	delete(s.orders[pollID], userID)
	s.mu.Unlock()

	s.notify(pollID)
	return nil
}

func (s *OrderStore) ListByPoll(ctx context.Context, pollID string) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(pollID), nil
}

func (s *OrderStore) Subscribe(ctx context.Context, pollID string, fn func([]order.Order)) (func(), error) {
	s.mu.Lock()
	f, ok := s.subs[pollID]
	if !ok {
		f = newFanout[[]order.Order]()
		s.subs[pollID] = f
	}
	// Seeding under the store lock keeps the initial snapshot ordered
	// against concurrent mutations.
	sub, cancel := f.subscribe(fn)
	sub.offer(s.snapshotLocked(pollID))
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

func (s *OrderStore) notify(pollID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.subs[pollID]
	if !ok {
		return
	}
	f.publish(s.snapshotLocked(pollID))
}

// snapshotLocked returns the poll's orders sorted oldest first, user id as a
// tiebreaker so the list is stable for the UI.
func (s *OrderStore) snapshotLocked(pollID string) []order.Order {
	byUser := s.orders[pollID]
	res := make([]order.Order, 0, len(byUser))
	for _, o := range byUser {
		res = append(res, *o)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].UserID < res[j].UserID
	})
	return res
}
