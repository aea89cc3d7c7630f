package memory

import (
	"context"
	"sync"
	"time"

	"easyfood/internal/domain/user"
)

type UserStore struct {
	mu      sync.Mutex
	users   map[string]*user.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			res = append(res, *u)
		}
	}
	return res, nil
}

func (s *UserStore) List(ctx context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		res = append(res, *u)
	}
	return res, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = role
	return nil
}
