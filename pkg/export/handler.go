package export

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/rest"
	"github.com/tempora/tempora/pkg/calendar"
	"github.com/tempora/tempora/pkg/event"
)

// CsvRenderer renders events to CSV text.
type CsvRenderer interface {
	RenderEvents(events []*event.Event) (string, error)
}

// ICalRenderer renders events to an iCalendar payload.
type ICalRenderer interface {
	RenderEvents(events []*event.Event, zone *time.Location) (string, error)
}

type ExportHandler struct {
	calendars    calendar.Resolver
	csvRenderer  CsvRenderer
	icalRenderer ICalRenderer
}

func NewExportHandler(calendars calendar.Resolver, csvRenderer CsvRenderer, icalRenderer ICalRenderer) *ExportHandler {
	return &ExportHandler{calendars: calendars, csvRenderer: csvRenderer, icalRenderer: icalRenderer}
}

// Export serves the whole calendar as a downloadable file. The format
// query parameter selects csv or ics; csv is the default.
func (handler *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]

	cal, err := handler.calendars.Resolve(calendarName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, calendar.ErrCalendarNotFound) {
			status = http.StatusNotFound
		}
		rest.WriteError(w, status, err)
		return
	}
	events := cal.Store().Events()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	log.Debugf("exporting calendar %q as %s (%d events)", cal.Name(), format, len(events))

	var payload, contentType, extension string
	switch format {
	case "csv":
		payload, err = handler.csvRenderer.RenderEvents(events)
		contentType, extension = "text/csv; charset=utf-8", "csv"
	case "ics":
		payload, err = handler.icalRenderer.RenderEvents(events, cal.Zone())
		contentType, extension = "text/calendar; charset=utf-8", "ics"
	default:
		rest.WriteError(w, http.StatusBadRequest, fmt.Errorf("unsupported export format %q", format))
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cal.Name()+"."+extension))
	if _, err := w.Write([]byte(payload)); err != nil {
		log.Errorf("failed to write export response: %v", err)
	}
}
