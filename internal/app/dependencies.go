package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/event_bus"
	"github.com/tempora/tempora/internal/utils"
	"github.com/tempora/tempora/pkg/calendar"
	"github.com/tempora/tempora/pkg/export"
	"github.com/tempora/tempora/pkg/registry"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	Registry        *registry.Registry
	Session         *registry.Session
	CalendarHandler *registry.CalendarHandler

	EventService *calendar.Service
	EventHandler *calendar.EventHandler

	CsvRenderer   *export.CsvRendererImpl
	ICalRenderer  *export.ICalRendererImpl
	ExportHandler *export.ExportHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies() *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.Bus = event_bus.NewEventBus()
	registerAuditLog(deps.Bus)

	deps.Registry = registry.New()
	deps.Session = registry.NewSession(deps.Registry)
	deps.CalendarHandler = registry.NewCalendarHandler(deps.Registry, deps.Session)

	// The session resolves calendar names, so an empty name means the
	// currently selected calendar.
	deps.EventService = calendar.NewService(deps.Session, deps.Clock, deps.Bus)
	deps.EventHandler = calendar.NewEventHandler(deps.EventService)

	deps.CsvRenderer = export.NewCsvRenderer()
	deps.ICalRenderer = export.NewICalRenderer(deps.Clock)
	deps.ExportHandler = export.NewExportHandler(deps.Session, deps.CsvRenderer, deps.ICalRenderer)

	return deps
}

// registerAuditLog subscribes info-level listeners for every calendar
// mutation published on the bus.
func registerAuditLog(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.EventChanged](bus, event_bus.EventCreated,
		func(e event_bus.EventT[event_bus.EventChanged]) error {
			log.Infof("event created in %q: %s (%s - %s)", e.Data.Calendar, e.Data.Subject, e.Data.Start, e.Data.End)
			return nil
		})
	event_bus.SubscribeTyped[event_bus.EventChanged](bus, event_bus.EventEdited,
		func(e event_bus.EventT[event_bus.EventChanged]) error {
			log.Infof("event edited in %q: %s", e.Data.Calendar, e.Data.Subject)
			return nil
		})
	event_bus.SubscribeTyped[event_bus.SeriesExpanded](bus, event_bus.SeriesCreated,
		func(e event_bus.EventT[event_bus.SeriesExpanded]) error {
			log.Infof("series %s created in %q with %d occurrence(s)", e.Data.SeriesID, e.Data.Calendar, e.Data.Occurrences)
			return nil
		})
	event_bus.SubscribeTyped[event_bus.CopyCompleted](bus, event_bus.EventsCopied,
		func(e event_bus.EventT[event_bus.CopyCompleted]) error {
			log.Infof("copied %d event(s) from %q to %q, %d conflict(s)",
				e.Data.Copied, e.Data.SourceCalendar, e.Data.TargetCalendar, e.Data.Conflicts)
			return nil
		})
}
