package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("invalid event")

type Location string

const (
	LocationPhysical Location = "physical"
	LocationOnline   Location = "online"
)

// ParseLocation accepts a location name in any casing.
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(s) {
	case string(LocationPhysical):
		return LocationPhysical, nil
	case string(LocationOnline):
		return LocationOnline, nil
	}
	return "", fmt.Errorf("%w: unknown location %q", ErrInvalidEvent, s)
}

type Status string

const (
	StatusPrivate Status = "private"
	StatusPublic  Status = "public"
)

// ParseStatus accepts a status name in any casing.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case string(StatusPrivate):
		return StatusPrivate, nil
	case string(StatusPublic):
		return StatusPublic, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, s)
}

// Event is one calendar occurrence. Dates and times are local to the
// owning calendar's time zone. An empty SeriesID means the event is
// standalone; a non-empty one groups it with the other occurrences of a
// recurring series.
//
// Fields that take part in the event's identity (subject, dates, times)
// must only be changed through the owning store so the key index stays
// in sync; see ApplyEdit and the store's Update.
type Event struct {
	Subject     string
	StartDate   Date
	EndDate     Date
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	Description string
	Location    Location
	Status      Status
	SeriesID    string
}

// Key is the composite identity of an event. Two events with an equal
// key are the same booking.
type Key struct {
	Subject   string
	StartDate Date
	EndDate   Date
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s %s - %s %s", k.Subject, k.StartDate, k.StartTime, k.EndDate, k.EndTime)
}

// Key derives the event's current composite identity. It must be
// recomputed after any change to one of its five constituent fields.
func (e *Event) Key() Key {
	return Key{
		Subject:   e.Subject,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

// Validate checks the fields every stored event must carry.
func (e *Event) Validate() error {
	if e.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidEvent)
	}
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidEvent)
	}
	if e.StartDate.After(e.EndDate) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidEvent, e.StartDate, e.EndDate)
	}
	return nil
}

func (e *Event) Clone() *Event {
	c := *e
	return &c
}

func (e *Event) InSeries() bool {
	return e.SeriesID != ""
}

// StartIn returns the event's start as an instant in the given zone.
func (e *Event) StartIn(loc *time.Location) time.Time {
	return e.StartDate.At(e.StartTime, loc)
}

// EndIn returns the event's end as an instant in the given zone.
func (e *Event) EndIn(loc *time.Location) time.Time {
	return e.EndDate.At(e.EndTime, loc)
}

// Duration is the zone-naive span between start and end.
func (e *Event) Duration() time.Duration {
	return e.EndIn(time.UTC).Sub(e.StartIn(time.UTC))
}

func (e *Event) String() string {
	return fmt.Sprintf("%s starting on %s at %s, ending on %s at %s",
		e.Subject, e.StartDate, e.StartTime, e.EndDate, e.EndTime)
}
