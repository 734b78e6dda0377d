package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/api"
	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// App stores the router and the wired services, so they can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Store   databases.RecordStore
	Engine  *permissions.Engine
	Service *lifecycle.Service
	Hub     *NotificationHub
	Metrics *api.Metrics
	Auth    api.Authenticator

	client databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	if a.Metrics != nil {
		r.Use(api.MetricsMiddleware(a.Metrics))
		r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if a.Service == nil {
		return r
	}

	c := Case{Service: a.Service}
	p := Party{Resolver: a.Service.Parties(), Engine: a.Engine}
	l := Limitation{DB: a.Service.Limitations().DB, Engine: a.Engine}
	perm := Permission{Engine: a.Engine}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/cases", a.Auth.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases", a.Auth.Middleware(http.HandlerFunc(c.CaseHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PATCH")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/cases/{case_id}/transitions/{action}", a.Auth.Middleware(http.HandlerFunc(c.TransitionHandler))).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/notes", a.Auth.Middleware(http.HandlerFunc(c.AddNoteHandler))).Methods("POST")

	apiCreate.Handle("/parties", a.Auth.Middleware(http.HandlerFunc(p.PartiesHandler))).Methods("GET")
	apiCreate.Handle("/parties/resolve", a.Auth.Middleware(http.HandlerFunc(p.ResolvePartyHandler))).Methods("POST")
	apiCreate.Handle("/parties/{party_id}", a.Auth.Middleware(http.HandlerFunc(p.PartyByIDHandler))).Methods("GET")

	apiCreate.Handle("/limitations", a.Auth.Middleware(http.HandlerFunc(l.LimitationsHandler))).Methods("GET")
	apiCreate.Handle("/limitations", a.Auth.Middleware(http.HandlerFunc(l.CreateLimitationHandler))).Methods("POST")

	apiCreate.Handle("/permissions/check", a.Auth.Middleware(http.HandlerFunc(perm.CheckPermissionHandler))).Methods("GET")
	apiCreate.Handle("/permissions/modules", a.Auth.Middleware(http.HandlerFunc(perm.ModulesHandler))).Methods("GET")

	if a.Hub != nil {
		r.Handle("/ws/notifications", a.Auth.Middleware(http.HandlerFunc(a.Hub.HandleNotificationsWebSocket))).Methods("GET")
	}
	return r
}

// Initialize is invoked by main to open the record store, load the role
// policy and create a router
func (a *App) Initialize() error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	policy := permissions.DefaultPolicy()
	if a.Config.RolesFile != "" {
		policy, err = permissions.LoadPolicy(a.Config.RolesFile)
		if err != nil {
			zap.S().With("error", err).Error("failed to load role policy")
			return err
		}
	}
	return a.Wire(store, policy)
}

// Wire builds the engine, the lifecycle service and the notification hub on
// top of store and installs the routes
func (a *App) Wire(store databases.RecordStore, policy *permissions.Policy) error {
	responders, err := permissions.ParseRoleTypes(a.Config.PleaDealResponders)
	if err != nil {
		return err
	}
	if a.Metrics == nil {
		a.Metrics = api.NewMetrics()
	}
	engine, err := permissions.NewEngine(policy, permissions.WithDecisionHook(a.Metrics.ObserveDecision))
	if err != nil {
		return err
	}
	a.Store = store
	a.Engine = engine
	a.Hub = NewNotificationHub(engine)
	a.Auth = api.Authenticator{Secret: []byte(a.Config.JWTSecret)}

	opts := []lifecycle.Option{
		lifecycle.WithNotifier(a.Hub),
		lifecycle.WithNotifier(a.Metrics),
	}
	if len(responders) > 0 {
		opts = append(opts, lifecycle.WithPleaDealResponders(responders...))
	}
	a.Service = lifecycle.NewService(engine, store, opts...)
	a.initializeRoutes()
	return nil
}

func (a *App) openStore() (databases.RecordStore, error) {
	switch a.Config.StoreDriver {
	case config.StoreMongo:
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			// if we fail to create a new database client, then kill the pod
			zap.S().With("error", err).Error("failed to create new client")
			return nil, err
		}
		ctx, cancel := api.WithQueryTimeout(context.Background())
		defer cancel()
		if err := client.Connect(ctx); err != nil {
			// if we fail to connect to the database, then kill the pod
			zap.S().With("error", err).Error("failed to connect to database")
			return nil, err
		}
		a.client = client
		zap.S().Info("justice-case-api has connected to the database")
		return databases.NewMongoStore(databases.NewDatabase(&a.Config, client)), nil
	case config.StoreFile, "":
		zap.S().Infow("using file store", "dir", a.Config.DataDir)
		return databases.NewFileStore(a.Config.DataDir)
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
	}
}

// Close releases the database connection, if any
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// principal returns the caller stored by the auth middleware
func principal(r *http.Request) models.Principal {
	p, _ := api.PrincipalFrom(r.Context())
	return p
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}

// decodeBody decodes an optional JSON body into v
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}
