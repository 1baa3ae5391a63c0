package calendar

import (
	"time"

	"github.com/tempora/tempora/pkg/event"
)

// Overlaps reports whether the candidate [start, end] interval crosses
// the existing event's interval. Touching boundaries are legal:
// back-to-back events do not conflict. Intervals are compared
// zone-naively, as both sides live in the same calendar.
func Overlaps(existing *event.Event, start, end time.Time) bool {
	existingStart := existing.StartIn(time.UTC)
	existingEnd := existing.EndIn(time.UTC)
	if end.Before(existingStart) || end.Equal(existingStart) {
		return false
	}
	if start.After(existingEnd) || start.Equal(existingEnd) {
		return false
	}
	return true
}

// HasConflict reports whether any stored event overlaps the candidate.
// A nil candidate never conflicts.
func (s *EventStore) HasConflict(e *event.Event) bool {
	if e == nil {
		return false
	}
	start := e.StartIn(time.UTC)
	end := e.EndIn(time.UTC)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapsAnyLocked(start, end)
}

func (s *EventStore) overlapsAnyLocked(start, end time.Time) bool {
	for _, existing := range s.events {
		if Overlaps(existing, start, end) {
			return true
		}
	}
	return false
}

// SaveIfNoConflict checks the candidate against every stored event and
// inserts it when nothing overlaps, all under one lock, so two
// concurrent writers cannot both pass the check and double-book the
// slot. Returns false without saving when a conflict exists.
func (s *EventStore) SaveIfNoConflict(e *event.Event) (bool, error) {
	start := e.StartIn(time.UTC)
	end := e.EndIn(time.UTC)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsAnyLocked(start, end) {
		return false, nil
	}
	if err := s.saveLocked(e); err != nil {
		return false, err
	}
	return true, nil
}
