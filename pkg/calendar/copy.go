package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/pkg/event"
)

const copySuffix = "_copy"

var ErrMissingArgument = errors.New("missing required argument")

// CopyReport accumulates the outcome of a copy operation. Per-event
// scheduling conflicts skip the event and are recorded here; they never
// fail the operation as a whole.
type CopyReport struct {
	Copied    []*event.Event
	Conflicts []string // subjects dropped because they overlap an event in the target
	Notes     []string
}

func (r *CopyReport) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// copySubject appends the copy suffix. A subject that already carries
// it is left alone, so repeated copies do not stack suffixes.
func copySubject(subject string) string {
	if strings.HasSuffix(subject, copySuffix) {
		return subject
	}
	return subject + copySuffix
}

// copyInto clones src onto the given zone-naive start/end, saves it in
// the target calendar unless it conflicts there, and records the
// outcome in the report. Returns nil when the copy was dropped.
func copyInto(target *Calendar, src *event.Event, start, end time.Time, seriesID string, report *CopyReport) *event.Event {
	cp := src.Clone()
	cp.Subject = copySubject(src.Subject)
	cp.SeriesID = seriesID
	cp.StartDate, cp.StartTime = event.DateOf(start), event.TimeOfDayOf(start)
	cp.EndDate, cp.EndTime = event.DateOf(end), event.TimeOfDayOf(end)

	saved, err := target.Store().SaveIfNoConflict(cp)
	if err != nil {
		log.Infof("could not copy event %q into calendar %q: %v", cp.Subject, target.Name(), err)
		report.Conflicts = append(report.Conflicts, cp.Subject)
		return nil
	}
	if !saved {
		log.Infof("conflict detected for event %q in calendar %q; copy skipped", cp.Subject, target.Name())
		report.Conflicts = append(report.Conflicts, cp.Subject)
		return nil
	}
	report.Copied = append(report.Copied, cp)
	return cp
}

// CopyEvent copies one event into the target calendar at the given
// target-local start, preserving the event's zone-naive duration. The
// copy is always standalone: a series member copied singly drops its
// series id, which is reported as a note.
func (c *Calendar) CopyEvent(e *event.Event, target *Calendar, targetDate event.Date, targetTime event.TimeOfDay) (*CopyReport, error) {
	if e == nil || target == nil || targetDate.IsZero() {
		return nil, fmt.Errorf("%w: event, target calendar and target date/time are all required", ErrMissingArgument)
	}

	report := &CopyReport{}
	start := targetDate.At(targetTime, time.UTC)
	end := start.Add(e.Duration())
	if cp := copyInto(target, e, start, end, "", report); cp != nil && e.InSeries() {
		report.note("event %q was part of a series; copied as a standalone event", e.Subject)
	}
	return report, nil
}

// CopyEventsOnDate copies every event starting on sourceDate into the
// target calendar on targetDate, keeping each event's time of day.
// Standalone events and single-member series groups become standalone
// copies; a series group with several events that day becomes a new
// series under a freshly generated id.
func (c *Calendar) CopyEventsOnDate(sourceDate event.Date, target *Calendar, targetDate event.Date) (*CopyReport, error) {
	if target == nil || sourceDate.IsZero() || targetDate.IsZero() {
		return nil, fmt.Errorf("%w: source date, target calendar and target date are all required", ErrMissingArgument)
	}

	report := &CopyReport{}
	standalone, groups := groupBySeries(c.store.EventsOn(sourceDate))

	copyAt := func(e *event.Event, seriesID string) {
		start := targetDate.At(e.StartTime, time.UTC)
		copyInto(target, e, start, start.Add(e.Duration()), seriesID, report)
	}

	for _, e := range standalone {
		copyAt(e, "")
	}
	for seriesID, members := range groups {
		if len(members) == 1 {
			copyAt(members[0], "")
			report.note("single event of series %s copied as standalone", seriesID)
			continue
		}
		newID := uuid.NewString()
		report.note("series %s copied as new series %s with %d events", seriesID, newID, len(members))
		for _, e := range members {
			copyAt(e, newID)
		}
	}

	log.Infof("copied %d event(s) from %q to %q (%d conflict(s) skipped)",
		len(report.Copied), c.Name(), target.Name(), len(report.Conflicts))
	return report, nil
}

// CopyEventsBetween copies every event overlapping the inclusive
// [startDate, endDate] span into the target calendar, mapping each
// event's day offset from startDate onto targetStart. When the target
// calendar is in a different zone, the source-local times are first
// converted to the same instant in the target zone and the converted
// local date/time drives both the offset and the constructed copy.
// Series groups spanning several days are regrouped under one new id in
// temporal order.
func (c *Calendar) CopyEventsBetween(startDate, endDate event.Date, target *Calendar, targetStart event.Date) (*CopyReport, error) {
	if target == nil || startDate.IsZero() || endDate.IsZero() || targetStart.IsZero() {
		return nil, fmt.Errorf("%w: start date, end date, target calendar and target start date are all required", ErrMissingArgument)
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, startDate, endDate)
	}

	report := &CopyReport{}
	standalone, groups := groupBySeries(c.store.eventsOverlappingDates(startDate, endDate))

	sourceZone, targetZone := c.Zone(), target.Zone()
	copyMapped := func(e *event.Event, seriesID string) {
		localStart := e.StartIn(time.UTC)
		localEnd := e.EndIn(time.UTC)
		if sourceZone.String() != targetZone.String() {
			shiftedStart := e.StartIn(sourceZone).In(targetZone)
			shiftedEnd := e.EndIn(sourceZone).In(targetZone)
			localStart = event.DateOf(shiftedStart).At(event.TimeOfDayOf(shiftedStart), time.UTC)
			localEnd = event.DateOf(shiftedEnd).At(event.TimeOfDayOf(shiftedEnd), time.UTC)
		}

		offset := event.DaysBetween(startDate, event.DateOf(localStart))
		if offset < 0 {
			offset = 0
		}
		start := targetStart.AddDays(offset).At(event.TimeOfDayOf(localStart), time.UTC)
		copyInto(target, e, start, start.Add(localEnd.Sub(localStart)), seriesID, report)
	}

	for _, e := range standalone {
		copyMapped(e, "")
	}
	for seriesID, members := range groups {
		if len(members) == 1 {
			copyMapped(members[0], "")
			report.note("single event of series %s copied as standalone", seriesID)
			continue
		}
		SortByStart(members)
		newID := uuid.NewString()
		report.note("series %s copied as new series %s with %d events", seriesID, newID, len(members))
		for _, e := range members {
			copyMapped(e, newID)
		}
	}

	log.Infof("copied %d event(s) from %q to %q (%d standalone, %d series group(s), %d conflict(s) skipped)",
		len(report.Copied), c.Name(), target.Name(), len(standalone), len(groups), len(report.Conflicts))
	return report, nil
}

// groupBySeries partitions events into standalone events and series
// groups keyed by series id.
func groupBySeries(events []*event.Event) ([]*event.Event, map[string][]*event.Event) {
	var standalone []*event.Event
	groups := make(map[string][]*event.Event)
	for _, e := range events {
		if e.InSeries() {
			groups[e.SeriesID] = append(groups[e.SeriesID], e)
		} else {
			standalone = append(standalone, e)
		}
	}
	return standalone, groups
}
