package session

import (
	"context"
	"testing"
	"time"

	"easyfood/internal/domain/order"
	"easyfood/internal/domain/poll"
)

func TestManagerSharesControllerPerSession(t *testing.T) {
	e := newEnv(t)
	e.seedPoll(t, &poll.Poll{ID: "p1", Title: "Lunch"})

	m := NewManager(e.polls, e.orders, e.users, nil, nil)
	defer m.Close()

	s1, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if s1.Ctrl != s2.Ctrl {
		t.Fatalf("same (poll, user) must share one controller")
	}

	other, err := m.Acquire(context.Background(), "p1", "u2")
	if err != nil {
		t.Fatal(err)
	}
	if other.Ctrl == s1.Ctrl {
		t.Fatalf("different users must get different controllers")
	}

	s1.Release()
	s2.Release()
	other.Release()
}

func TestManagerClosesControllerOnLastRelease(t *testing.T) {
	e := newEnv(t)
	e.seedPoll(t, &poll.Poll{ID: "p1", Title: "Lunch"})

	m := NewManager(e.polls, e.orders, e.users, nil, nil)
	defer m.Close()

	s1, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	ctrl := s1.Ctrl
	s2, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	s1.Release()
	// Still held by s2: a later acquire joins the same controller.
	s3, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if s3.Ctrl != ctrl {
		t.Fatalf("controller must survive while any holder remains")
	}

	s2.Release()
	s3.Release()

	// All released: the next acquire starts a fresh controller.
	s4, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	defer s4.Release()
	if s4.Ctrl == ctrl {
		t.Fatalf("expected a fresh controller after the last release")
	}
}

func TestSubscriptionsSurviveAcquireContextCancel(t *testing.T) {
	e := newEnv(t)
	e.seedPoll(t, &poll.Poll{ID: "p1", Title: "Lunch"})
	e.seedUser(t, "u2", "Bartek")

	m := NewManager(e.polls, e.orders, e.users, nil, nil)
	defer m.Close()

	// The first holder opens the session from a short-lived request context.
	reqCtx, cancelReq := context.WithCancel(context.Background())
	s1, err := m.Acquire(reqCtx, "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Release()

	// The request finishes: its context dies and its hold is released while
	// the second holder keeps the session open.
	cancelReq()
	s1.Release()

	o := &order.Order{UserID: "u2", Dish: "Pad Thai", Cost: 7, CreatedAt: e.clock.Now()}
	if err := e.orders.Create(context.Background(), "p1", o); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		return len(s2.Ctrl.Snapshot().Orders) == 1
	}, "order snapshot on the surviving holder")

	past := e.clock.Now().Add(-time.Second)
	if err := e.polls.SetOrderingEndsAt(context.Background(), "p1", past); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		return s2.Ctrl.Snapshot().OrderingEnded
	}, "poll snapshot on the surviving holder")
}

func TestManagerReleaseIsIdempotent(t *testing.T) {
	e := newEnv(t)
	e.seedPoll(t, &poll.Poll{ID: "p1", Title: "Lunch"})

	m := NewManager(e.polls, e.orders, e.users, nil, nil)
	defer m.Close()

	s1, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	s1.Release()
	s1.Release() // double release must not tear down s2's controller

	s3, err := m.Acquire(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if s3.Ctrl != s2.Ctrl {
		t.Fatalf("double release must not close the shared controller")
	}
	s2.Release()
	s3.Release()
}
