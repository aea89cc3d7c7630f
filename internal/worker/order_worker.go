package worker

import (
	"context"
	"log/slog"
	"sync"
)

type OrderEvent struct {
	PollID string
	UserID string
	Action string // created, updated, deleted
	Cost   float64
}

// PollStats is the running tally of order activity within one poll.
type PollStats struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
	Deleted int64 `json:"deleted"`
}

// OrderStatsWorker drains order events off the hot request path and keeps
// per-poll activity tallies for the admin stats endpoint.
type OrderStatsWorker struct {
	ch  <-chan OrderEvent
	log *slog.Logger

	mu    sync.Mutex
	stats map[string]*PollStats
}

func NewOrderStatsWorker(ch <-chan OrderEvent, log *slog.Logger) *OrderStatsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &OrderStatsWorker{
		ch:    ch,
		log:   log,
		stats: make(map[string]*PollStats),
	}
}

func (w *OrderStatsWorker) Run(ctx context.Context) {
	w.log.Info("order stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("order stats worker stopped")
			return
		case ev := <-w.ch:
			w.record(ev)
		}
	}
}

// Stats returns the tally for one poll; zero stats when nothing happened yet.
func (w *OrderStatsWorker) Stats(pollID string) PollStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.stats[pollID]; ok {
		return *s
	}
	return PollStats{}
}

func (w *OrderStatsWorker) record(ev OrderEvent) {
	w.mu.Lock()
	s, ok := w.stats[ev.PollID]
	if !ok {
		s = &PollStats{}
		w.stats[ev.PollID] = s
	}
	switch ev.Action {
	case "created":
		s.Created++
	case "updated":
		s.Updated++
	case "deleted":
		s.Deleted++
	}
	w.mu.Unlock()

	w.log.Info("order event",
		"poll_id", ev.PollID,
		"user_id", ev.UserID,
		"action", ev.Action,
		"cost", ev.Cost,
	)
}
