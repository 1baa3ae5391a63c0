package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/tempora/tempora/pkg/event"
)

// Safety cap on walked recurrence days, so a count-bounded series whose
// occurrences keep colliding cannot walk forever.
const maxSeriesWalk = 5000

var (
	ErrNoRepeatDays   = errors.New("series must repeat on at least one weekday")
	ErrSeriesBounds   = errors.New("series needs an occurrence count or an end date")
	ErrMultiDaySeries = errors.New("series occurrences must start and end on the same day")
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Series describes weekday-based recurrence expanded from a seed event.
// It is consumed during expansion and never stored; only the generated
// events live on, linked by the series id.
type Series struct {
	ID          string
	Occurrences int        // total occurrences including the seed, when > 0
	Until       event.Date // last admissible day, when occurrence-count is unset
	Weekdays    []time.Weekday
}

func NewSeries(occurrences int, until event.Date, weekdays []time.Weekday) Series {
	return Series{
		ID:          uuid.NewString(),
		Occurrences: occurrences,
		Until:       until,
		Weekdays:    weekdays,
	}
}

// Expand generates the remaining occurrences of the series into the
// store, starting the day after the seed's start date. The seed must
// already be saved and must carry the series id. Days whose key would
// collide with an existing event are skipped and, in occurrence-count
// mode, do not count toward the total: a series is best effort, not a
// guarantee of exactly N occurrences.
func (s Series) Expand(store *EventStore, seed *event.Event) ([]*event.Event, error) {
	if len(s.Weekdays) == 0 {
		return nil, ErrNoRepeatDays
	}
	if s.Occurrences <= 0 && s.Until.IsZero() {
		return nil, ErrSeriesBounds
	}
	if seed.StartDate != seed.EndDate {
		return nil, ErrMultiDaySeries
	}

	byWeekday := make([]rrule.Weekday, 0, len(s.Weekdays))
	for _, day := range s.Weekdays {
		byWeekday = append(byWeekday, rruleWeekdays[day])
	}
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byWeekday,
		Dtstart:   seed.StartDate.AddDays(1).At(seed.StartTime, time.UTC),
	}
	if !s.Until.IsZero() {
		opt.Until = s.Until.At(event.TimeOfDay{Hour: 23, Minute: 59}, time.UTC)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	var created []*event.Event
	saved := 1 // the seed itself
	next := rule.Iterator()
	for walked := 0; walked < maxSeriesWalk; walked++ {
		if s.Occurrences > 0 && saved >= s.Occurrences {
			return created, nil
		}
		t, ok := next()
		if !ok {
			return created, nil
		}

		day := event.DateOf(t)
		occurrence := seed.Clone()
		occurrence.StartDate = day
		occurrence.EndDate = day
		occurrence.SeriesID = s.ID

		if err := store.Save(occurrence); err != nil {
			if errors.Is(err, ErrDuplicateEvent) {
				log.Debugf("skipping duplicate series occurrence on %s", day)
				continue
			}
			return created, err
		}
		saved++
		created = append(created, occurrence)
	}

	log.Warnf("series %s stopped after walking %d days with %d occurrence(s) saved", s.ID, maxSeriesWalk, saved)
	return created, nil
}
