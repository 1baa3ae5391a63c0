package registry

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/rest"
	"github.com/tempora/tempora/pkg/calendar"
)

type CalendarDTO struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Events   int    `json:"events"`
}

func calendarToDTO(cal *calendar.Calendar) CalendarDTO {
	return CalendarDTO{
		Name:     cal.Name(),
		Timezone: cal.Zone().String(),
		Events:   cal.Store().Size(),
	}
}

type CalendarHandler struct {
	registry *Registry
	session  *Session
}

func NewCalendarHandler(registry *Registry, session *Session) *CalendarHandler {
	return &CalendarHandler{registry: registry, session: session}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calendar.ErrCalendarNotFound), errors.Is(err, ErrNoCurrentCalendar):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateCalendar):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTimezone), errors.Is(err, calendar.ErrInvalidCalendar):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type createCalendarRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (handler *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("creating calendar")

	var dto createCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}

	cal, err := handler.registry.Create(dto.Name, dto.Timezone)
	if err != nil {
		rest.WriteError(w, statusFor(err), err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, calendarToDTO(cal))
}

func (handler *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	names := handler.registry.Names()
	dtos := make([]CalendarDTO, 0, len(names))
	for _, name := range names {
		cal, err := handler.registry.Resolve(name)
		if err != nil {
			continue
		}
		dtos = append(dtos, calendarToDTO(cal))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (handler *CalendarHandler) Current(w http.ResponseWriter, r *http.Request) {
	cal, err := handler.session.Current()
	if err != nil {
		rest.WriteError(w, statusFor(err), err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendarToDTO(cal))
}

type useCalendarRequest struct {
	Name string `json:"name"`
}

func (handler *CalendarHandler) Use(w http.ResponseWriter, r *http.Request) {
	var dto useCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}

	cal, err := handler.session.Use(dto.Name)
	if err != nil {
		rest.WriteError(w, statusFor(err), err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendarToDTO(cal))
}

type updateCalendarRequest struct {
	Name     string `json:"name,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Update renames a calendar, moves it to a new timezone, or both.
func (handler *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var dto updateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err)
		return
	}

	cal, err := handler.registry.Resolve(name)
	if err != nil {
		rest.WriteError(w, statusFor(err), err)
		return
	}
	if dto.Timezone != "" {
		if cal, err = handler.registry.SetZone(name, dto.Timezone); err != nil {
			rest.WriteError(w, statusFor(err), err)
			return
		}
	}
	if dto.Name != "" {
		if cal, err = handler.registry.Rename(name, dto.Name); err != nil {
			rest.WriteError(w, statusFor(err), err)
			return
		}
	}
	rest.WriteJSON(w, http.StatusOK, calendarToDTO(cal))
}
