package app

import (
	"github.com/gorilla/mux"
	"github.com/tempora/tempora/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Calendars
	r.HandleFunc("/api/calendar", deps.CalendarHandler.Create).Methods("POST")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.List).Methods("GET")
	r.HandleFunc("/api/calendar/current", deps.CalendarHandler.Current).Methods("GET")
	r.HandleFunc("/api/calendar/current", deps.CalendarHandler.Use).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}", deps.CalendarHandler.Update).Methods("PATCH")

	// Events
	r.HandleFunc("/api/calendar/{name}/event", deps.EventHandler.Create).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event/series", deps.EventHandler.CreateSeries).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event", deps.EventHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event/lookup", deps.EventHandler.Lookup).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event/search", deps.EventHandler.Search).Queries("subject", "{subject}").Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event/edit", deps.EventHandler.Edit).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/status", deps.EventHandler.Status).Queries("at", "{at}").Methods("GET")

	// Copying between calendars
	r.HandleFunc("/api/copy/event", deps.EventHandler.CopyEvent).Methods("POST")
	r.HandleFunc("/api/copy/day", deps.EventHandler.CopyDay).Methods("POST")
	r.HandleFunc("/api/copy/range", deps.EventHandler.CopyRange).Methods("POST")

	// Export
	r.HandleFunc("/api/calendar/{name}/export", deps.ExportHandler.Export).Methods("GET")
}
