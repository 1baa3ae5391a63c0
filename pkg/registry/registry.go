// Package registry keeps the named calendars of a running instance and
// tracks which one is currently selected.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/pkg/calendar"
)

var (
	ErrDuplicateCalendar = errors.New("calendar already exists")
	ErrInvalidTimezone   = errors.New("unknown timezone")
)

// Registry is the in-memory index of calendars by name.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]*calendar.Calendar
}

func New() *Registry {
	return &Registry{calendars: make(map[string]*calendar.Calendar)}
}

// Create builds a calendar in the given IANA timezone and registers it.
// A duplicate name or an unknown timezone leaves the registry untouched.
func (r *Registry) Create(name, timezone string) (*calendar.Calendar, error) {
	zone, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}
	cal, err := calendar.New(name, zone)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calendars[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCalendar, name)
	}
	r.calendars[name] = cal
	log.Infof("created calendar %q in timezone %s", name, zone)
	return cal, nil
}

// Resolve returns the calendar registered under name.
func (r *Registry) Resolve(name string) (*calendar.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.calendars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", calendar.ErrCalendarNotFound, name)
	}
	return cal, nil
}

// Names lists the registered calendar names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rename moves a calendar to a new name, re-indexing the registry.
func (r *Registry) Rename(oldName, newName string) (*calendar.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cal, ok := r.calendars[oldName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", calendar.ErrCalendarNotFound, oldName)
	}
	if oldName == newName {
		return cal, nil
	}
	if _, taken := r.calendars[newName]; taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCalendar, newName)
	}
	if err := cal.Rename(newName); err != nil {
		return nil, err
	}
	delete(r.calendars, oldName)
	r.calendars[newName] = cal
	log.Infof("renamed calendar %q to %q", oldName, newName)
	return cal, nil
}

// SetZone moves a calendar to a new IANA timezone, shifting its stored
// events to the new zone's local representation.
func (r *Registry) SetZone(name, timezone string) (*calendar.Calendar, error) {
	zone, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}
	cal, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := cal.SetZone(zone); err != nil {
		return nil, err
	}
	log.Infof("calendar %q moved to timezone %s", name, zone)
	return cal, nil
}

// Size returns the number of registered calendars.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calendars)
}
