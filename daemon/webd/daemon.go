// Package webd is the HTTP daemon: report ingest, session lifecycle,
// route reports, and a websocket firehose of accepted points.
package webd

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fieldroute/fieldd/api"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/state"
	"github.com/gorilla/mux"
	"github.com/olahol/melody"
)

type WebDaemon struct {
	Config  *params.WebDaemonConfig
	tracker *api.Tracker

	logger         *slog.Logger
	melodyInstance *melody.Melody
	started        time.Time
}

// NewWebDaemon builds the daemon. A nil tracker gets the production
// wiring: bbolt persistence under the configured datadir and the
// configured directions provider.
func NewWebDaemon(config *params.WebDaemonConfig, tracker *api.Tracker) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	if tracker == nil {
		store, err := state.NewBoltStore(config.DataDir)
		if err != nil {
			return nil, err
		}
		client := routing.NewDirectionsClient(config.Routing)
		if !client.Configured() {
			slog.Warn("No routing credential, routed estimates degrade")
		}
		var prov routing.Provider = client
		tracker = api.NewTracker(store, prov)
	}
	return &WebDaemon{
		Config:  config,
		tracker: tracker,
		logger:  slog.With("d", "web"),
		started: time.Now(),
	}, nil
}

// Run starts the HTTP server and blocks on it.
func (s *WebDaemon) Run() error {
	router := s.NewRouter()
	listener, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	s.logger.Info("Starting web daemon", "network", s.Config.Network, "address", s.Config.Address)
	server := &http.Server{Handler: router}
	return server.Serve(listener)
}

func (s *WebDaemon) NewRouter() *mux.Router {
	s.initMelody()

	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiRoutes.Path("/socket").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/lastknown").HandlerFunc(s.handleLastKnown).Methods(http.MethodGet)
	apiJSONRoutes.Path("/path").HandlerFunc(s.handlePath).Methods(http.MethodGet)
	apiJSONRoutes.Path("/path/live").HandlerFunc(s.handleLivePath).Methods(http.MethodGet)
	apiJSONRoutes.Path("/workrest").HandlerFunc(s.handleWorkRest).Methods(http.MethodGet)
	apiJSONRoutes.Path("/summary").HandlerFunc(s.handleSummary).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(tokenAuthenticationMiddleware)

	authenticatedAPIRoutes.Path("/update").HandlerFunc(s.handleUpdate).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/populate").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/populate/").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/checkinout").HandlerFunc(s.handleCheckInOut).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/customer/checkin").HandlerFunc(s.handleCustomerCheckIn).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/customer/checkout").HandlerFunc(s.handleCustomerCheckOut).Methods(http.MethodPost)

	return router
}
