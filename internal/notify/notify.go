package notify

import (
	"log/slog"
	"sync"

	"easyfood/internal/metrics"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is a short user-facing message. Delivery is fire and forget;
// senders never learn whether anyone saw it.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Notify(n Notification) {
	metrics.IncNotification(string(n.Severity))
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification",
		"title", n.Title,
		"description", n.Description,
		"severity", n.Severity,
	)
}

// Buffer retains the most recent notifications for a single consumer,
// dropping the oldest once capacity is reached.
type Buffer struct {
	mu    sync.Mutex
	items []Notification
	cap   int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 32
	}
	return &Buffer{cap: capacity}
}

func (b *Buffer) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if len(b.items) > b.cap {
		b.items = b.items[len(b.items)-b.cap:]
	}
}

// Drain returns all buffered notifications and clears the buffer.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Multi fans one notification out to several sinks.
func Multi(sinks ...Notifier) Notifier {
	return NotifierFunc(func(n Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}
