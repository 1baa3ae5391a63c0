package registry

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/pkg/calendar"
)

var ErrNoCurrentCalendar = errors.New("no calendar selected")

// Session tracks which calendar is currently selected. Selection is
// per session, not a property of the registry, so several sessions
// could point at different calendars over the same registry.
type Session struct {
	mu       sync.RWMutex
	registry *Registry
	current  *calendar.Calendar
}

func NewSession(registry *Registry) *Session {
	return &Session{registry: registry}
}

// Use selects the named calendar as the session's current one.
func (s *Session) Use(name string) (*calendar.Calendar, error) {
	cal, err := s.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = cal
	s.mu.Unlock()
	log.Infof("current calendar is now %q", cal.Name())
	return cal, nil
}

// Current returns the selected calendar.
func (s *Session) Current() (*calendar.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoCurrentCalendar
	}
	return s.current, nil
}

// Resolve returns the named calendar, or the session's current one when
// name is empty. Satisfies calendar.Resolver, so event operations can
// address "the current calendar" without naming it.
func (s *Session) Resolve(name string) (*calendar.Calendar, error) {
	if name == "" || name == "current" {
		cal, err := s.Current()
		if err != nil {
			return nil, fmt.Errorf("%w: name a calendar or select one first", err)
		}
		return cal, nil
	}
	return s.registry.Resolve(name)
}
