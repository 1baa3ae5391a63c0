package calendar

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/event_bus"
	"github.com/tempora/tempora/internal/utils"
	"github.com/tempora/tempora/pkg/event"
)

// Resolver finds a calendar by name.
type Resolver interface {
	Resolve(name string) (*Calendar, error)
}

// Service exposes the calendar operations consumed by the API layer,
// resolving calendar names through the registry. Mutations are
// announced on the bus; a nil bus disables the notifications.
type Service struct {
	calendars Resolver
	clock     utils.Clock
	bus       *event_bus.EventBus
}

func NewService(calendars Resolver, clock utils.Clock, bus *event_bus.EventBus) *Service {
	return &Service{calendars: calendars, clock: clock, bus: bus}
}

func (s *Service) publish(eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(context.Background(), eventType, data)); err != nil {
		log.Warnf("publishing %s failed: %v", eventType, err)
	}
}

// CreateEventRequest carries the optional fields of a new event. A nil
// Start with a nil End produces the default all-day 08:00-17:00 event
// for today; a non-nil End requires a non-nil Start.
type CreateEventRequest struct {
	Subject     string
	Start       *time.Time
	End         *time.Time
	Description string
	Location    string
	Status      string
}

func (s *Service) draftFrom(req CreateEventRequest) (*event.Event, error) {
	draft := event.NewDraft(s.clock).Subject(req.Subject).Description(req.Description)
	if req.Start != nil {
		draft.Start(*req.Start)
	}
	if req.End != nil {
		draft.End(*req.End)
	}
	if req.Location != "" {
		location, err := event.ParseLocation(req.Location)
		if err != nil {
			return nil, err
		}
		draft.Location(location)
	}
	if req.Status != "" {
		status, err := event.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		draft.Status(status)
	}
	return draft.Build()
}

// CreateEvent builds an event from the request and saves it into the
// named calendar.
func (s *Service) CreateEvent(calendarName string, req CreateEventRequest) (*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	e, err := s.draftFrom(req)
	if err != nil {
		return nil, err
	}
	if err := cal.Store().Save(e); err != nil {
		return nil, err
	}
	log.Debugf("saved event %s in calendar %q", e.Key(), cal.Name())
	s.publish(event_bus.EventCreated, event_bus.EventChanged{
		Calendar: cal.Name(),
		Subject:  e.Subject,
		Start:    e.StartDate.String() + " " + e.StartTime.String(),
		End:      e.EndDate.String() + " " + e.EndTime.String(),
		SeriesID: e.SeriesID,
	})
	return e, nil
}

// CreateSeriesRequest describes a recurring series: the seed event plus
// the weekday recurrence and either an occurrence count or an end date.
type CreateSeriesRequest struct {
	Seed        CreateEventRequest
	Occurrences int
	Until       event.Date
	Weekdays    []time.Weekday
}

// CreateSeries saves the seed and expands the remaining occurrences.
// Returns every event of the series that was stored, seed first.
func (s *Service) CreateSeries(calendarName string, req CreateSeriesRequest) ([]*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	seed, err := s.draftFrom(req.Seed)
	if err != nil {
		return nil, err
	}
	if seed.StartDate != seed.EndDate {
		return nil, ErrMultiDaySeries
	}

	series := NewSeries(req.Occurrences, req.Until, req.Weekdays)
	seed.SeriesID = series.ID
	if err := cal.Store().Save(seed); err != nil {
		return nil, err
	}
	created, err := series.Expand(cal.Store(), seed)
	if err != nil {
		return nil, err
	}
	log.Infof("created series %s with %d event(s) in calendar %q", series.ID, len(created)+1, cal.Name())
	s.publish(event_bus.SeriesCreated, event_bus.SeriesExpanded{
		Calendar:    cal.Name(),
		SeriesID:    series.ID,
		Occurrences: len(created) + 1,
	})
	return append([]*event.Event{seed}, created...), nil
}

// GetEvent looks an event up by its exact composite identity.
func (s *Service) GetEvent(calendarName string, key event.Key) (*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	return cal.Store().Get(key)
}

// EventsOn returns the named calendar's events starting on the day.
func (s *Service) EventsOn(calendarName string, date event.Date) ([]*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	events := cal.Store().EventsOn(date)
	SortByStart(events)
	return events, nil
}

// EventsInRange returns events starting on any day of the inclusive
// range.
func (s *Service) EventsInRange(calendarName string, from, to time.Time) ([]*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	events, err := cal.Store().EventsInRange(from, to)
	if err != nil {
		return nil, err
	}
	SortByStart(events)
	return events, nil
}

// Search returns events whose subject matches the query.
func (s *Service) Search(calendarName, subject string) ([]*event.Event, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	return cal.Store().SearchBySubject(subject), nil
}

// BusyAt reports whether the calendar has an event starting exactly at
// the given local date-time.
func (s *Service) BusyAt(calendarName string, at time.Time) (bool, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return false, err
	}
	return cal.Store().BusyAt(event.DateOf(at), event.TimeOfDayOf(at)), nil
}

// EditEvent applies a scoped property edit to the event stored under
// the target key.
func (s *Service) EditEvent(calendarName string, target event.Key, scope EditScope, edit event.PropertyEdit) (*EditResult, error) {
	cal, err := s.calendars.Resolve(calendarName)
	if err != nil {
		return nil, err
	}
	result, err := cal.Store().EditScoped(target, scope, edit)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		s.publish(event_bus.EventEdited, event_bus.EventChanged{
			Calendar: cal.Name(),
			Subject:  target.Subject,
			Start:    target.StartDate.String() + " " + target.StartTime.String(),
			End:      target.EndDate.String() + " " + target.EndTime.String(),
			SeriesID: result.SeriesID,
		})
	}
	return result, nil
}

// CopyEventRequest identifies one source event and where to place the
// copy.
type CopyEventRequest struct {
	SourceCalendar string
	TargetCalendar string
	Event          event.Key
	TargetDate     event.Date
	TargetTime     event.TimeOfDay
}

func (s *Service) CopyEvent(req CopyEventRequest) (*CopyReport, error) {
	source, target, err := s.resolvePair(req.SourceCalendar, req.TargetCalendar)
	if err != nil {
		return nil, err
	}
	e, err := source.Store().Get(req.Event)
	if err != nil {
		return nil, err
	}
	report, err := source.CopyEvent(e, target, req.TargetDate, req.TargetTime)
	if err != nil {
		return nil, err
	}
	s.publishCopy(source, target, report)
	return report, nil
}

type CopyDayRequest struct {
	SourceCalendar string
	TargetCalendar string
	SourceDate     event.Date
	TargetDate     event.Date
}

func (s *Service) CopyDay(req CopyDayRequest) (*CopyReport, error) {
	source, target, err := s.resolvePair(req.SourceCalendar, req.TargetCalendar)
	if err != nil {
		return nil, err
	}
	report, err := source.CopyEventsOnDate(req.SourceDate, target, req.TargetDate)
	if err != nil {
		return nil, err
	}
	s.publishCopy(source, target, report)
	return report, nil
}

type CopyRangeRequest struct {
	SourceCalendar string
	TargetCalendar string
	StartDate      event.Date
	EndDate        event.Date
	TargetStart    event.Date
}

func (s *Service) CopyRange(req CopyRangeRequest) (*CopyReport, error) {
	source, target, err := s.resolvePair(req.SourceCalendar, req.TargetCalendar)
	if err != nil {
		return nil, err
	}
	report, err := source.CopyEventsBetween(req.StartDate, req.EndDate, target, req.TargetStart)
	if err != nil {
		return nil, err
	}
	s.publishCopy(source, target, report)
	return report, nil
}

func (s *Service) publishCopy(source, target *Calendar, report *CopyReport) {
	s.publish(event_bus.EventsCopied, event_bus.CopyCompleted{
		SourceCalendar: source.Name(),
		TargetCalendar: target.Name(),
		Copied:         len(report.Copied),
		Conflicts:      len(report.Conflicts),
	})
}

func (s *Service) resolvePair(sourceName, targetName string) (*Calendar, *Calendar, error) {
	source, err := s.calendars.Resolve(sourceName)
	if err != nil {
		return nil, nil, fmt.Errorf("source calendar: %w", err)
	}
	target, err := s.calendars.Resolve(targetName)
	if err != nil {
		return nil, nil, fmt.Errorf("target calendar: %w", err)
	}
	return source, target, nil
}
