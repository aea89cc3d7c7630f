package session

import (
	"testing"
	"time"
)

func TestDeadlineFiresOnceOnTransition(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Minute)

	var d deadlineTracker

	// future, future, past: exactly one event, on the third snapshot.
	if ev := d.observe(&future, now); ev != eventNone {
		t.Fatalf("future deadline should not fire, got %v", ev)
	}
	if ev := d.observe(&future, now); ev != eventNone {
		t.Fatalf("repeated future deadline should not fire, got %v", ev)
	}
	if ev := d.observe(&past, now); ev != eventOrderingClosed {
		t.Fatalf("expected ordering closed event on transition")
	}
	if ev := d.observe(&past, now); ev != eventNone {
		t.Fatalf("duplicate past snapshot must not re-fire, got %v", ev)
	}
}

func TestDeadlineNilNeverFires(t *testing.T) {
	now := time.Now()
	var d deadlineTracker

	for i := 0; i < 3; i++ {
		if ev := d.observe(nil, now); ev != eventNone {
			t.Fatalf("nil deadline should never fire, got %v", ev)
		}
	}
}

func TestDeadlineAlreadyPastFiresOnFirstSnapshot(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	var d deadlineTracker

	if ev := d.observe(&past, now); ev != eventOrderingClosed {
		t.Fatalf("expected event for first past snapshot")
	}
}

func TestDeadlineRearmsWhenMovedToFuture(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	var d deadlineTracker

	if ev := d.observe(&past, now); ev != eventOrderingClosed {
		t.Fatalf("expected first close event")
	}
	if ev := d.observe(&future, now); ev != eventNone {
		t.Fatalf("extension should not fire, got %v", ev)
	}
	if ev := d.observe(&past, now); ev != eventOrderingClosed {
		t.Fatalf("expected a second close after the deadline was extended and passed again")
	}
}

func TestDeadlineBoundary(t *testing.T) {
	now := time.Now()
	var d deadlineTracker

	// A deadline equal to now counts as expired.
	exact := now
	if ev := d.observe(&exact, now); ev != eventOrderingClosed {
		t.Fatalf("deadline equal to now should count as expired")
	}
}
