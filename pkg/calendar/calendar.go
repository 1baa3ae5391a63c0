package calendar

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidCalendar  = errors.New("invalid calendar")
	ErrCalendarNotFound = errors.New("calendar not found")
)

// Calendar is a named collection of events kept in one time zone. All
// stored dates and times are local to that zone.
type Calendar struct {
	mu    sync.RWMutex
	name  string
	zone  *time.Location
	store *EventStore
}

func New(name string, zone *time.Location) (*Calendar, error) {
	if name == "" {
		return nil, errors.Join(ErrInvalidCalendar, errors.New("name cannot be empty"))
	}
	if zone == nil {
		return nil, errors.Join(ErrInvalidCalendar, errors.New("time zone cannot be empty"))
	}
	return &Calendar{name: name, zone: zone, store: NewEventStore()}, nil
}

func (c *Calendar) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Calendar) Zone() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zone
}

func (c *Calendar) Store() *EventStore {
	return c.store
}

// Rename changes the calendar's name in place. The owning registry is
// responsible for re-indexing its name map.
func (c *Calendar) Rename(name string) error {
	if name == "" {
		return errors.Join(ErrInvalidCalendar, errors.New("name cannot be empty"))
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	return nil
}

// SetZone moves the calendar to a new time zone. Every stored event's
// local date and time fields are shifted to the new zone's
// representation of the same instant, and the store's key index is
// rebuilt to match.
func (c *Calendar) SetZone(zone *time.Location) error {
	if zone == nil {
		return errors.Join(ErrInvalidCalendar, errors.New("time zone cannot be empty"))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if zone == c.zone || zone.String() == c.zone.String() {
		return nil
	}
	c.store.shiftZone(c.zone, zone)
	c.zone = zone
	return nil
}
