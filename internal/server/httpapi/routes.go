package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Handler builds the routed handler with access logging, panic recovery
// and CORS applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", s.register).Methods(http.MethodPost)
	a.HandleFunc("/verify-otp", s.verifyOTP).Methods(http.MethodPost)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.Handle("/refresh", s.authenticate(s.auth.ParseRefreshToken)(http.HandlerFunc(s.refresh))).
		Methods(http.MethodPost)

	adm := r.PathPrefix("/admin").Subrouter()
	adm.Use(s.authenticate(s.auth.ParseAccessToken), requireRole(models.RoleSuperAdmin))
	adm.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	adm.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	adm.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPut)
	adm.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{s.opts.AllowedOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return handlers.CombinedLoggingHandler(s.opts.AccessLog, h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// recoveryLogger routes panics caught by gorilla/handlers into the app log.
type recoveryLogger struct {
	log logging.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error(context.Background(), "panic recovered", "panic", fmt.Sprint(v...))
}
