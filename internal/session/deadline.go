package session

import "time"

type deadlineState int

const (
	deadlineOpen deadlineState = iota
	deadlineClosedNotified
)

type deadlineEvent int

const (
	eventNone deadlineEvent = iota
	eventOrderingClosed
)

// deadlineTracker decides when the one-time "ordering closed" notification is
// due. It is keyed purely off the latest observed deadline value: while open,
// an expired deadline fires the event and moves to closed-notified; a deadline
// moved back into the future re-arms the tracker so a later close fires again.
// Duplicate or repeated snapshots of an already-passed deadline never re-fire.
type deadlineTracker struct {
	state deadlineState
}

// observe consumes the latest deadline and returns the event this transition
// produced, if any. Notification dispatch is the caller's job.
func (d *deadlineTracker) observe(endsAt *time.Time, now time.Time) deadlineEvent {
	expired := endsAt != nil && !endsAt.After(now)

	switch d.state {
	case deadlineOpen:
		if expired {
			d.state = deadlineClosedNotified
			return eventOrderingClosed
		}
	case deadlineClosedNotified:
		if !expired {
			d.state = deadlineOpen
		}
	}
	return eventNone
}
