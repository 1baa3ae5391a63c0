package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/rest"
	"github.com/tempora/tempora/pkg/event"
)

const dateTimeLayout = "2006-01-02T15:04"

type EventDTO struct {
	Subject     string `json:"subject"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	SeriesID    string `json:"seriesId,omitempty"`
}

func EventToDTO(e *event.Event) EventDTO {
	return EventDTO{
		Subject:     e.Subject,
		StartDate:   e.StartDate.String(),
		EndDate:     e.EndDate.String(),
		StartTime:   e.StartTime.String(),
		EndTime:     e.EndTime.String(),
		Description: e.Description,
		Location:    string(e.Location),
		Status:      string(e.Status),
		SeriesID:    e.SeriesID,
	}
}

func eventsToDTO(events []*event.Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}

// KeyDTO identifies one stored event by its composite identity.
type KeyDTO struct {
	Subject   string `json:"subject"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (dto KeyDTO) toKey() (event.Key, error) {
	startDate, err := event.ParseDate(dto.StartDate)
	if err != nil {
		return event.Key{}, err
	}
	endDate, err := event.ParseDate(dto.EndDate)
	if err != nil {
		return event.Key{}, err
	}
	startTime, err := event.ParseTimeOfDay(dto.StartTime)
	if err != nil {
		return event.Key{}, err
	}
	endTime, err := event.ParseTimeOfDay(dto.EndTime)
	if err != nil {
		return event.Key{}, err
	}
	if dto.Subject == "" {
		return event.Key{}, fmt.Errorf("%w: subject is required", event.ErrInvalidEvent)
	}
	return event.Key{
		Subject:   dto.Subject,
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
	}, nil
}

type CopyReportDTO struct {
	Copied    []EventDTO `json:"copied"`
	Conflicts []string   `json:"conflicts"`
	Notes     []string   `json:"notes,omitempty"`
}

func copyReportToDTO(report *CopyReport) CopyReportDTO {
	dto := CopyReportDTO{
		Copied:    eventsToDTO(report.Copied),
		Conflicts: report.Conflicts,
		Notes:     report.Notes,
	}
	if dto.Conflicts == nil {
		dto.Conflicts = []string{}
	}
	return dto
}

type EventHandler struct {
	service *Service
}

func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrCalendarNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, event.ErrInvalidEvent),
		errors.Is(err, ErrInvalidCalendar),
		errors.Is(err, ErrMissingArgument),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrNoRepeatDays),
		errors.Is(err, ErrSeriesBounds),
		errors.Is(err, ErrMultiDaySeries):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	rest.WriteError(w, statusFor(err), err)
}

type createEventRequest struct {
	Subject     string `json:"subject"`
	Start       string `json:"start,omitempty"` // "2006-01-02T15:04", optional
	End         string `json:"end,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (req createEventRequest) toServiceRequest() (CreateEventRequest, error) {
	out := CreateEventRequest{
		Subject:     req.Subject,
		Description: req.Description,
		Location:    req.Location,
		Status:      req.Status,
	}
	if req.Start != "" {
		start, err := time.Parse(dateTimeLayout, req.Start)
		if err != nil {
			return out, fmt.Errorf("%w: invalid start %q", event.ErrInvalidEvent, req.Start)
		}
		out.Start = &start
	}
	if req.End != "" {
		end, err := time.Parse(dateTimeLayout, req.End)
		if err != nil {
			return out, fmt.Errorf("%w: invalid end %q", event.ErrInvalidEvent, req.End)
		}
		out.End = &end
	}
	return out, nil
}

func (handler *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	log.Debugf("creating event in calendar %q", calendarName)

	var dto createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	req, err := dto.toServiceRequest()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := handler.service.CreateEvent(calendarName, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(created))
}

type createSeriesRequest struct {
	createEventRequest
	Weekdays    []string `json:"weekdays"`
	Occurrences int      `json:"occurrences,omitempty"`
	Until       string   `json:"until,omitempty"` // "2006-01-02"
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", event.ErrInvalidEvent, name)
		}
		days = append(days, day)
	}
	return days, nil
}

func (handler *EventHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	log.Debugf("creating event series in calendar %q", calendarName)

	var dto createSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	seed, err := dto.toServiceRequest()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	weekdays, err := parseWeekdays(dto.Weekdays)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	req := CreateSeriesRequest{Seed: seed, Occurrences: dto.Occurrences, Weekdays: weekdays}
	if dto.Until != "" {
		until, err := event.ParseDate(dto.Until)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		req.Until = until
	}

	created, err := handler.service.CreateSeries(calendarName, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventsToDTO(created))
}

// GetEvents serves both single-day and range queries, selected by the
// date= or from=/to= query parameters.
func (handler *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	query := r.URL.Query()

	if query.Has("date") {
		date, err := event.ParseDate(query.Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		events, err := handler.service.EventsOn(calendarName, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
		return
	}

	from, err := time.Parse(dateTimeLayout, query.Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid or missing from parameter"))
		return
	}
	to, err := time.Parse(dateTimeLayout, query.Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid or missing to parameter"))
		return
	}
	events, err := handler.service.EventsInRange(calendarName, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

func (handler *EventHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	query := r.URL.Query()

	key, err := KeyDTO{
		Subject:   query.Get("subject"),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
		StartTime: query.Get("startTime"),
		EndTime:   query.Get("endTime"),
	}.toKey()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	found, err := handler.service.GetEvent(calendarName, key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(found))
}

func (handler *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		rest.WriteError(w, http.StatusBadRequest, fmt.Errorf("subject parameter is required"))
		return
	}

	events, err := handler.service.Search(calendarName, subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

// Status probes availability at an exact local date-time. An event
// starting at that minute means busy.
func (handler *EventHandler) Status(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	at, err := time.Parse(dateTimeLayout, r.URL.Query().Get("at"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid or missing at parameter"))
		return
	}

	busy, err := handler.service.BusyAt(calendarName, at)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := "available"
	if busy {
		status = "busy"
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

type editEventRequest struct {
	Target   KeyDTO `json:"target"`
	Scope    string `json:"scope"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

type editResultDTO struct {
	Edited   int    `json:"edited"`
	Changed  bool   `json:"changed"`
	SeriesID string `json:"seriesId,omitempty"`
}

func (handler *EventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]

	var dto editEventRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	target, err := dto.Target.toKey()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	edit, err := event.ParsePropertyEdit(dto.Property, dto.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	scope := EditScope(dto.Scope)
	if scope == "" {
		scope = EditScopeSingle
	}

	result, err := handler.service.EditEvent(calendarName, target, scope, edit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, editResultDTO{
		Edited:   result.Edited,
		Changed:  result.Changed,
		SeriesID: result.SeriesID,
	})
}

type copyEventRequest struct {
	SourceCalendar string `json:"sourceCalendar"`
	TargetCalendar string `json:"targetCalendar"`
	Event          KeyDTO `json:"event"`
	TargetDate     string `json:"targetDate"`
	TargetTime     string `json:"targetTime"`
}

func (handler *EventHandler) CopyEvent(w http.ResponseWriter, r *http.Request) {
	var dto copyEventRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	key, err := dto.Event.toKey()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	targetDate, err := event.ParseDate(dto.TargetDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	targetTime, err := event.ParseTimeOfDay(dto.TargetTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := handler.service.CopyEvent(CopyEventRequest{
		SourceCalendar: dto.SourceCalendar,
		TargetCalendar: dto.TargetCalendar,
		Event:          key,
		TargetDate:     targetDate,
		TargetTime:     targetTime,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, copyReportToDTO(report))
}

type copyDayRequest struct {
	SourceCalendar string `json:"sourceCalendar"`
	TargetCalendar string `json:"targetCalendar"`
	SourceDate     string `json:"sourceDate"`
	TargetDate     string `json:"targetDate"`
}

func (handler *EventHandler) CopyDay(w http.ResponseWriter, r *http.Request) {
	var dto copyDayRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	sourceDate, err := event.ParseDate(dto.SourceDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	targetDate, err := event.ParseDate(dto.TargetDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := handler.service.CopyDay(CopyDayRequest{
		SourceCalendar: dto.SourceCalendar,
		TargetCalendar: dto.TargetCalendar,
		SourceDate:     sourceDate,
		TargetDate:     targetDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, copyReportToDTO(report))
}

type copyRangeRequest struct {
	SourceCalendar string `json:"sourceCalendar"`
	TargetCalendar string `json:"targetCalendar"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TargetStart    string `json:"targetStart"`
}

func (handler *EventHandler) CopyRange(w http.ResponseWriter, r *http.Request) {
	var dto copyRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}
	startDate, err := event.ParseDate(dto.StartDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	endDate, err := event.ParseDate(dto.EndDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	targetStart, err := event.ParseDate(dto.TargetStart)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := handler.service.CopyRange(CopyRangeRequest{
		SourceCalendar: dto.SourceCalendar,
		TargetCalendar: dto.TargetCalendar,
		StartDate:      startDate,
		EndDate:        endDate,
		TargetStart:    targetStart,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, copyReportToDTO(report))
}
