package export

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/tempora/tempora/internal/utils"
	"github.com/tempora/tempora/pkg/calendar"
	"github.com/tempora/tempora/pkg/event"
)

type ICalRendererImpl struct {
	clock utils.Clock
}

func NewICalRenderer(clock utils.Clock) *ICalRendererImpl {
	return &ICalRendererImpl{clock: clock}
}

// RenderEvents serializes the events as a VCALENDAR. Instants are
// rendered in the given zone, the zone of the owning calendar.
func (t *ICalRendererImpl) RenderEvents(events []*event.Event, zone *time.Location) (string, error) {
	calendar.SortByStart(events)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//tempora//calendar export//EN")

	stamp := t.clock.Now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(uuid.NewString())
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.StartIn(zone))
		ve.SetEndAt(e.EndIn(zone))
		ve.SetSummary(e.Subject)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(string(e.Location))
		}
		if e.Status != "" {
			ve.SetProperty(ical.ComponentPropertyClass, strings.ToUpper(string(e.Status)))
		}
		if e.InSeries() {
			ve.SetProperty(ical.ComponentProperty("X-SERIES-ID"), e.SeriesID)
		}
	}

	return cal.Serialize(), nil
}
