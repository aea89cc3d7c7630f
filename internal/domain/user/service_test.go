package user

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*User // keyed by id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (r *fakeRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeRepo) UpdateRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ala", "ala@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	if u.Role != "user" {
		t.Fatalf("new accounts default to role user, got %q", u.Role)
	}
	if u.PasswordHash == "secret123" {
		t.Fatalf("password must not be stored in plaintext")
	}

	got, err := svc.Login(ctx, "ala@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ala", "ala@example.com", "secret123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "Other", "ala@example.com", "different")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	for _, tc := range [][3]string{
		{"", "a@example.com", "pw"},
		{"Ala", "", "pw"},
		{"Ala", "a@example.com", ""},
	} {
		if _, err := svc.Register(ctx, tc[0], tc[1], tc[2]); err == nil {
			t.Fatalf("expected error for %v", tc)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ala", "ala@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "ala@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ala", "ala@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.UpdateRole(ctx, u.ID, "superadmin"); err == nil {
		t.Fatalf("expected rejection of unknown role")
	}
	if err := svc.UpdateRole(ctx, u.ID, "admin"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != "admin" {
		t.Fatalf("role not persisted, got %q", got.Role)
	}
}

func TestNamesByIDSkipsUnknown(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ala", "ala@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	names, err := svc.NamesByID(ctx, []string{u.ID, "ghost"})
	if err != nil {
		t.Fatalf("names by id: %v", err)
	}
	if names[u.ID] != "Ala" {
		t.Fatalf("expected resolved name, got %q", names[u.ID])
	}
	if _, ok := names["ghost"]; ok {
		t.Fatalf("unknown ids must be absent from the result")
	}
}
