package poll

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("poll not found")
)

// RestaurantOption is one restaurant a poll can be about, with an optional
// menu link.
type RestaurantOption struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON accepts the structured form as well as the legacy bare-string
// form ("Pizza Corner") still present in older poll documents.
func (o *RestaurantOption) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*o = RestaurantOption{Name: name}
		return nil
	}
	type plain RestaurantOption
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = RestaurantOption(p)
	return nil
}

type Poll struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	SelectedRestaurant string             `json:"selected_restaurant,omitempty"`
	RestaurantOptions  []RestaurantOption `json:"restaurant_options"`
	OrderingEndsAt     *time.Time         `json:"ordering_ends_at,omitempty"`
	CreatedBy          string             `json:"created_by"`
	CreatedAt          time.Time          `json:"created_at"`
}

// OrderingEnded reports whether the ordering deadline is set and has passed.
func (p *Poll) OrderingEnded(now time.Time) bool {
	return p != nil && p.OrderingEndsAt != nil && !p.OrderingEndsAt.After(now)
}

// WithMenuURL returns a copy of opts where the option named selected carries
// the given URL. Entries decoded from the legacy bare-string form come out of
// this already normalized to the structured shape.
func WithMenuURL(opts []RestaurantOption, selected, url string) []RestaurantOption {
	out := make([]RestaurantOption, len(opts))
	copy(out, opts)
	for i := range out {
		if out[i].Name == selected {
			out[i].URL = url
		}
	}
	return out
}

type Repository interface {
	Create(ctx context.Context, p *Poll) error
	GetByID(ctx context.Context, id string) (*Poll, error)
	List(ctx context.Context) ([]Poll, error)
	Delete(ctx context.Context, id string) error
	SetOrderingEndsAt(ctx context.Context, id string, endsAt time.Time) error
	SetSelectedRestaurant(ctx context.Context, id, name string) error
	SetRestaurantOptions(ctx context.Context, id string, opts []RestaurantOption) error
	// Subscribe delivers a fresh snapshot on every change of the poll
	// document, and nil once the poll is deleted. The returned func
	// cancels the subscription.
	Subscribe(ctx context.Context, id string, fn func(*Poll)) (func(), error)
}
