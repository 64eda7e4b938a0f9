package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cbodonnell/cardbridge/pkg/api/handlers"
	"github.com/cbodonnell/cardbridge/pkg/api/middleware"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	hub    *Hub
}

type NewAPIServerOptions struct {
	Addr       string
	Dispatcher handlers.Dispatcher
	Hub        *Hub
	// Repository serves the journal routes. They are not registered when
	// it is nil.
	Repository repositories.Repository
}

// readRoutes maps the GET routes onto the read commands they dispatch.
var readRoutes = map[string]string{
	"/ping":            commands.CommandPing,
	"/api/state":       commands.CommandGetState,
	"/api/player":      commands.CommandGetPlayer,
	"/api/hand":        commands.CommandGetHand,
	"/api/drawpile":    commands.CommandGetDrawPile,
	"/api/discardpile": commands.CommandGetDiscardPile,
	"/api/deck":        commands.CommandGetDeck,
	"/api/relics":      commands.CommandGetRelics,
	"/api/potions":     commands.CommandGetPotions,
	"/api/monsters":    commands.CommandGetMonsters,
}

// NewAPIServer creates a new http.Server for the command bridge.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	return &APIServer{
		server: &http.Server{
			Addr:    opts.Addr,
			Handler: NewRouter(opts),
		},
		hub: opts.Hub,
	}
}

// NewRouter builds the HTTP routes for the bridge.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging, middleware.CORS)

	commandHandler := handlers.HandleCommand(opts.Dispatcher)
	r.Handle("/", commandHandler).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/api/command", commandHandler).Methods(http.MethodPost, http.MethodOptions)

	for path, name := range readRoutes {
		r.Handle(path, handlers.HandleNamedCommand(opts.Dispatcher, name)).Methods(http.MethodGet, http.MethodOptions)
	}
	r.Handle("/api/outcomes/{id}", handlers.HandleGetOutcome(opts.Dispatcher)).Methods(http.MethodGet, http.MethodOptions)

	if opts.Repository != nil {
		r.Handle("/api/journal", handlers.HandleListJournal(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
		r.Handle("/api/journal/{session}/{id}", handlers.HandleGetJournalEntry(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	}

	if opts.Hub != nil {
		r.Handle("/ws", opts.Hub).Methods(http.MethodGet)
	}
	return r
}

// Start starts the APIServer. It returns once the server is stopped.
func (s *APIServer) Start() error {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return err
	}
	return nil
}

// Stop stops the APIServer and disconnects websocket subscribers.
func (s *APIServer) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.server.Shutdown(ctx)
}
