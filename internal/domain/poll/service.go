package poll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoSelectedRestaurant = errors.New("poll has no selected restaurant")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, title, createdBy string, options []RestaurantOption) (*Poll, error) {
	if title == "" {
		return nil, errors.New("title required")
	}
	if len(options) < 2 {
		return nil, errors.New("poll must have at least 2 restaurant options")
	}

	p := &Poll{
		ID:                uuid.NewString(),
		Title:             title,
		RestaurantOptions: options,
		CreatedBy:         createdBy,
		CreatedAt:         time.Now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Poll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Poll, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SelectRestaurant fixes the poll on one of its restaurant options.
func (s *Service) SelectRestaurant(ctx context.Context, id, name string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, opt := range p.RestaurantOptions {
		if opt.Name == name {
			return s.repo.SetSelectedRestaurant(ctx, id, name)
		}
	}
	return errors.New("restaurant is not an option of this poll")
}
