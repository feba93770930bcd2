// Package httpapi exposes the authentication, administration, and submission
// operations over a JSON HTTP API. It owns request/response shaping and maps
// service errors onto status codes; all domain decisions live in the services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/logging"
	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
	"github.com/DmytroLysachenko/safe-vault/internal/server/services"
)

// AdminRole gates the administration endpoints.
const AdminRole = "admin"

type Server struct {
	address     string
	logger      logging.Logger
	auth        *services.AuthService
	roles       *services.RoleService
	submissions *services.SubmissionService
	issuer      *auth.TokenIssuer
}

func NewServer(address string, l logging.Logger, as *services.AuthService, rs *services.RoleService,
	ss *services.SubmissionService, issuer *auth.TokenIssuer) *Server {
	return &Server{
		address:     address,
		logger:      l.With("module", "httpapi"),
		auth:        as,
		roles:       rs,
		submissions: ss,
		issuer:      issuer,
	}
}

// Handler builds the route table. Exposed separately from Run so tests can
// drive the API through httptest.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.requireRole(AdminRole))
	admin.HandleFunc("/assign-role", s.handleAssignRole).Methods(http.MethodPost)
	admin.HandleFunc("/roles/{username}", s.handleGetRoles).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.handleSearchUsers).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// statusFromError maps service errors to HTTP statuses. Cancellation and
// store failures become 503 so callers can tell "try again" from a denial.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusServiceUnavailable
	}
}
