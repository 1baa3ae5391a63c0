package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tempora/tempora/pkg/event"
)

var (
	ErrDuplicateEvent = errors.New("event already exists")
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidRange   = errors.New("end of range cannot be before its start")
)

// EventStore holds all events of one calendar, keyed by their composite
// identity. Invariant: no two live entries share a key, and every
// entry's map key equals its event's current Key(). All compound
// read-modify-rekey sequences run under the store lock.
type EventStore struct {
	mu     sync.RWMutex
	events map[event.Key]*event.Event
}

func NewEventStore() *EventStore {
	return &EventStore{events: make(map[event.Key]*event.Event)}
}

// Save inserts the event under its current key. A key collision rejects
// the save before validation and leaves the store untouched.
func (s *EventStore) Save(e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(e)
}

func (s *EventStore) saveLocked(e *event.Event) error {
	key := e.Key()
	if _, ok := s.events[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, key)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.events[key] = e
	return nil
}

// Lookup retrieves an event by its exact composite identity.
func (s *EventStore) Lookup(subject string, startDate, endDate event.Date, startTime, endTime event.TimeOfDay) (*event.Event, error) {
	return s.Get(event.Key{
		Subject:   subject,
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
	})
}

func (s *EventStore) Get(key event.Key) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, key)
	}
	return e, nil
}

// EventsOn returns all events starting on the given day. Order is
// unspecified.
func (s *EventStore) EventsOn(date event.Date) []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []*event.Event
	for _, e := range s.events {
		if e.StartDate == date {
			events = append(events, e)
		}
	}
	return events
}

// EventsInRange unions EventsOn for every calendar day in the inclusive
// span. Only events that start on a day inside the span are returned;
// an event already open on the first day but starting earlier is not.
func (s *EventStore) EventsInRange(start, end time.Time) ([]*event.Event, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	var events []*event.Event
	last := event.DateOf(end)
	for day := event.DateOf(start); !day.After(last); day = day.AddDays(1) {
		events = append(events, s.EventsOn(day)...)
	}
	return events, nil
}

// eventsOverlappingDates returns all events whose date span crosses the
// inclusive [start, end] day range. Used by the range copy, which
// unlike EventsInRange must also pick up events already in progress.
func (s *EventStore) eventsOverlappingDates(start, end event.Date) []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []*event.Event
	for _, e := range s.events {
		if e.EndDate.Before(start) || e.StartDate.After(end) {
			continue
		}
		events = append(events, e)
	}
	return events
}

// SearchBySubject returns events whose subject contains the query,
// case-insensitively, sorted by start.
func (s *EventStore) SearchBySubject(query string) []*event.Event {
	s.mu.RLock()
	q := strings.ToLower(query)
	var events []*event.Event
	for _, e := range s.events {
		if strings.Contains(strings.ToLower(e.Subject), q) {
			events = append(events, e)
		}
	}
	s.mu.RUnlock()
	SortByStart(events)
	return events
}

// BusyAt reports whether any event starts exactly at the given local
// date and time.
func (s *EventStore) BusyAt(date event.Date, t event.TimeOfDay) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.StartDate == date && e.StartTime == t {
			return true
		}
	}
	return false
}

// Rekey removes the entry stored under oldKey and re-inserts the event
// under its current key. Every edit that touches a key-bearing field
// must go through this (or Update) or the key index desynchronizes.
func (s *EventStore) Rekey(oldKey event.Key, e *event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, oldKey)
	s.events[e.Key()] = e
}

// Update atomically locates the event under key, applies the edit and
// re-indexes it under its new key. An edit whose new value equals the
// old one returns changed=false without touching the store; an edit
// that would collide with another event's key returns ErrDuplicateEvent
// with no mutation.
func (s *EventStore) Update(key event.Key, edit event.PropertyEdit) (event.Key, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(key, edit)
}

func (s *EventStore) updateLocked(key event.Key, edit event.PropertyEdit) (event.Key, bool, error) {
	e, ok := s.events[key]
	if !ok {
		return key, false, fmt.Errorf("%w: %s", ErrEventNotFound, key)
	}

	trial := e.Clone()
	changed, err := trial.ApplyEdit(edit)
	if err != nil {
		return key, false, err
	}
	if !changed {
		return key, false, nil
	}
	if err := trial.Validate(); err != nil {
		return key, false, err
	}

	newKey := trial.Key()
	if newKey != key {
		if _, taken := s.events[newKey]; taken {
			return key, false, fmt.Errorf("%w: %s", ErrDuplicateEvent, newKey)
		}
	}

	if _, err := e.ApplyEdit(edit); err != nil {
		return key, false, err
	}
	delete(s.events, key)
	s.events[newKey] = e
	return newKey, true, nil
}

// Events returns a snapshot of all stored events.
func (s *EventStore) Events() []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*event.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	return events
}

func (s *EventStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// shiftZone rewrites every event's local date/time fields from one zone
// into another and rebuilds the key index in the same pass.
func (s *EventStore) shiftZone(from, to *time.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rebuilt := make(map[event.Key]*event.Event, len(s.events))
	for _, e := range s.events {
		start := e.StartIn(from).In(to)
		end := e.EndIn(from).In(to)
		e.StartDate, e.StartTime = event.DateOf(start), event.TimeOfDayOf(start)
		e.EndDate, e.EndTime = event.DateOf(end), event.TimeOfDayOf(end)
		rebuilt[e.Key()] = e
	}
	s.events = rebuilt
}

// SortByStart orders events by start date, then start time, then
// subject for deterministic listings.
func SortByStart(events []*event.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.StartDate != b.StartDate {
			return a.StartDate.Before(b.StartDate)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime.Before(b.StartTime)
		}
		return a.Subject < b.Subject
	})
}
