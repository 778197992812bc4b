package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter wires every HTTP endpoint. Everything but ping, register and
// login requires a session.
func NewRouter(log *zap.Logger, deps Deps, timeout time.Duration) *mux.Router {
	r := mux.NewRouter()
	r.Use(AccessLog(log.Named("http")))

	r.Handle("/api/ping", NewPingHandler(log, deps.DB, timeout)).Methods(http.MethodGet)
	r.Handle("/api/auth/register", NewRegisterHandler(log, deps.Auth, timeout)).Methods(http.MethodPost)
	r.Handle("/api/auth/login", NewLoginHandler(log, deps.Auth, timeout)).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(Authenticate(log, deps.Auth))

	api.Handle("/dashboard", NewDashboardHandler(log, deps.Dashboards, timeout)).Methods(http.MethodGet)

	// weddings
	api.Handle("/wedding", NewCreateWeddingHandler(log, deps.Weddings, timeout)).Methods(http.MethodPost)
	api.Handle("/wedding", NewCurrentWeddingHandler(log, deps.Weddings, timeout)).Methods(http.MethodGet)
	api.Handle("/wedding/{id}", NewGetWeddingHandler(log, deps.Weddings, timeout)).Methods(http.MethodGet)
	api.Handle("/wedding/{id}", NewUpdateWeddingHandler(log, deps.Weddings, timeout)).Methods(http.MethodPut)

	// checklist
	api.Handle("/tasks", NewListTasksHandler(log, deps.Checklists, timeout)).Methods(http.MethodGet)
	api.Handle("/tasks/{weddingId}/{taskId}", NewUpdateTaskStatusHandler(log, deps.Checklists, timeout)).Methods(http.MethodPut)

	return r
}
