package event

import (
	"fmt"
	"time"

	"github.com/tempora/tempora/internal/utils"
)

// Draft builds an Event with documented defaults: an event created
// without any date/time information becomes an 08:00-17:00 appointment
// on the current day, private and online, with an empty description.
// An end without a start is rejected; a start without an end keeps the
// start's date and the default end time.
type Draft struct {
	subject     string
	startDate   Date
	endDate     Date
	startTime   TimeOfDay
	endTime     TimeOfDay
	description string
	location    Location
	status      Status
	seriesID    string
	startSet    bool
	endSet      bool
}

func NewDraft(clock utils.Clock) *Draft {
	today := DateOf(clock.Now())
	return &Draft{
		startDate: today,
		endDate:   today,
		startTime: TimeOfDay{Hour: 8},
		endTime:   TimeOfDay{Hour: 17},
		location:  LocationOnline,
		status:    StatusPrivate,
	}
}

func (d *Draft) Subject(subject string) *Draft {
	d.subject = subject
	return d
}

// Start sets the start date and time from one combined local date-time.
func (d *Draft) Start(t time.Time) *Draft {
	d.startDate = DateOf(t)
	d.startTime = TimeOfDayOf(t)
	d.startSet = true
	return d
}

// End sets the end date and time from one combined local date-time.
func (d *Draft) End(t time.Time) *Draft {
	d.endDate = DateOf(t)
	d.endTime = TimeOfDayOf(t)
	d.endSet = true
	return d
}

func (d *Draft) Description(description string) *Draft {
	d.description = description
	return d
}

func (d *Draft) Location(location Location) *Draft {
	d.location = location
	return d
}

func (d *Draft) Status(status Status) *Draft {
	d.status = status
	return d
}

func (d *Draft) Series(seriesID string) *Draft {
	d.seriesID = seriesID
	return d
}

func (d *Draft) Build() (*Event, error) {
	if d.endSet && !d.startSet {
		return nil, fmt.Errorf("%w: end date/time cannot be set without start date/time", ErrInvalidEvent)
	}
	if d.startSet && !d.endSet {
		// A timed start with no end stays on the start's day and keeps
		// the default end time.
		d.endDate = d.startDate
	}

	e := &Event{
		Subject:     d.subject,
		StartDate:   d.startDate,
		EndDate:     d.endDate,
		StartTime:   d.startTime,
		EndTime:     d.endTime,
		Description: d.description,
		Location:    d.location,
		Status:      d.status,
		SeriesID:    d.seriesID,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
