package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/internal/config"
)

// Application wires configuration, calendar registry, router, and
// server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (registry, services, handlers...)
	deps := BuildDependencies()

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// Bootstrap the default calendar so the API works out of the box.
	if cfg.DefaultCalendar.Name != "" {
		if _, err := deps.Registry.Create(cfg.DefaultCalendar.Name, cfg.DefaultCalendar.Timezone); err != nil {
			return nil, err
		}
		if _, err := deps.Session.Use(cfg.DefaultCalendar.Name); err != nil {
			return nil, err
		}
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv}, nil
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
