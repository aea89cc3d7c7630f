package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"easyfood/internal/domain/order"
	"easyfood/internal/domain/poll"
	"easyfood/internal/domain/user"
	"easyfood/internal/notify"
)

// Manager keeps one live controller per (poll, user) pair, refcounted across
// the HTTP handlers and stream connections that share it. The controller is
// started on first acquire and closed when the last holder releases it.
type Manager struct {
	polls    poll.Repository
	orders   order.Repository
	users    user.Repository
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry
}

type sessionKey struct {
	pollID string
	userID string
}

type sessionEntry struct {
	ctrl *Controller
	buf  *notify.Buffer
	refs int
}

// Session is one acquired handle on a shared controller. Notifications holds
// the messages produced since the last drain.
type Session struct {
	Ctrl          *Controller
	Notifications *notify.Buffer

	release func()
	once    sync.Once
}

func (s *Session) Release() {
	s.once.Do(s.release)
}

func NewManager(polls poll.Repository, orders order.Repository, users user.Repository, notifier notify.Notifier, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		polls:    polls,
		orders:   orders,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		sessions: make(map[sessionKey]*sessionEntry),
	}
}

// Acquire returns the live controller for (pollID, userID), starting one if
// none exists. The ctx only bounds the initial fetches; the subscriptions
// live until the last Release.
func (m *Manager) Acquire(ctx context.Context, pollID, userID string) (*Session, error) {
	key := sessionKey{pollID: pollID, userID: userID}

	m.mu.Lock()
	entry, ok := m.sessions[key]
	if ok {
		entry.refs++
		m.mu.Unlock()
		return m.sessionFor(key, entry), nil
	}

	buf := notify.NewBuffer(64)
	sink := buf
	var notifier notify.Notifier = sink
	if m.notifier != nil {
		notifier = notify.Multi(sink, m.notifier)
	}

	ctrl := NewController(Config{
		PollID:   pollID,
		UserID:   userID,
		Polls:    m.polls,
		Orders:   m.orders,
		Users:    m.users,
		Notifier: notifier,
		Logger:   m.log,
		Now:      m.now,
	})
	entry = &sessionEntry{ctrl: ctrl, buf: buf, refs: 1}
	m.sessions[key] = entry
	m.mu.Unlock()

	if err := ctrl.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
		ctrl.Close()
		return nil, err
	}

	return m.sessionFor(key, entry), nil
}

// Close tears down every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*sessionEntry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.sessions = make(map[sessionKey]*sessionEntry)
	m.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
}

func (m *Manager) sessionFor(key sessionKey, entry *sessionEntry) *Session {
	return &Session{
		Ctrl:          entry.ctrl,
		Notifications: entry.buf,
		release: func() {
			m.mu.Lock()
			e, ok := m.sessions[key]
			if !ok || e != entry {
				m.mu.Unlock()
				return
			}
			e.refs--
			if e.refs > 0 {
				m.mu.Unlock()
				return
			}
			delete(m.sessions, key)
			m.mu.Unlock()
			entry.ctrl.Close()
		},
	}
}
