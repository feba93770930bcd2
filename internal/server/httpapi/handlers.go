package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/DmytroLysachenko/safe-vault/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

type userView struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		s.writeError(w, http.StatusBadRequest, "Username and password are required for authentication.")
		return
	}

	user, err := s.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Error(ctx, "authentication failed", "error", err.Error())
		s.writeError(w, statusFromError(err), "Temporary failure, try again.")
		return
	}
	if user == nil {
		s.writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	roles, err := s.roles.GetRoles(ctx, user.Username)
	if err != nil {
		s.logger.Error(ctx, "role lookup failed", "error", err.Error())
		s.writeError(w, statusFromError(err), "Temporary failure, try again.")
		return
	}

	token, expiresAt, err := s.issuer.Issue(*user, roles)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Could not issue token.")
		return
	}

	s.logger.Info(ctx, "login successful", "username", user.Username)
	s.writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful.",
		Token:     token,
		ExpiresAt: expiresAt,
		User: userView{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    roles,
		},
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	user, err := s.auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusBadRequest {
			s.writeError(w, status, "Registration rejected: invalid username, email, or password.")
			return
		}
		s.logger.Error(ctx, "registration failed", "error", err.Error())
		s.writeError(w, status, "Temporary failure, try again.")
		return
	}

	s.logger.Info(ctx, "user registered", "username", user.Username)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful.",
		"user": userView{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    []string{},
		},
	})
}

type assignRoleRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Role) == "" {
		s.writeError(w, http.StatusBadRequest, "Username and role are required.")
		return
	}

	if err := s.roles.AssignRole(ctx, req.Username, req.Role); err != nil {
		status := statusFromError(err)
		if status == http.StatusNotFound {
			s.writeError(w, status, fmt.Sprintf("User %q was not found.", req.Username))
			return
		}
		s.logger.Error(ctx, "role assignment failed", "error", err.Error())
		s.writeError(w, status, "Could not assign role.")
		return
	}

	s.logger.Info(ctx, "role assigned", "username", req.Username, "role", req.Role)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Role %q assigned to %q.", req.Role, req.Username),
	})
}

func (s *Server) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]

	roles, err := s.roles.GetRoles(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "role lookup failed", "error", err.Error())
		s.writeError(w, statusFromError(err), "Temporary failure, try again.")
		return
	}
	if len(roles) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("No roles found for %q.", username))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"roles":    roles,
	})
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	term := r.URL.Query().Get("q")

	found, err := s.auth.SearchUsers(ctx, term)
	if err != nil {
		s.logger.Error(ctx, "user search failed", "error", err.Error())
		s.writeError(w, statusFromError(err), "Temporary failure, try again.")
		return
	}

	views := make([]userView, 0, len(found))
	for _, u := range found {
		views = append(views, userView{ID: u.ID, Username: u.Username, Email: u.Email})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"query": term,
		"users": views,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Missing bearer token.")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Welcome to the admin dashboard, %s.", claims.Username),
		"sections": []string{"system-status", "audit-logs", "user-management"},
	})
}

type submitRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {

	sub, ok := s.readSubmission(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Unsupported or malformed request body.")
		return
	}

	result := s.submissions.Validate(sub)
	if !result.Valid {
		s.writeError(w, http.StatusBadRequest, result.Reason)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Submission accepted.",
		"username": result.Username,
		"email":    result.Email,
	})
}

// readSubmission accepts either a JSON body or an HTML form post.
func (s *Server) readSubmission(r *http.Request) (services.Submission, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(contentType, "application/json") {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return services.Submission{}, false
		}
		return services.Submission{Username: req.Username, Email: req.Email}, true
	}

	if err := r.ParseForm(); err != nil {
		return services.Submission{}, false
	}
	if !r.PostForm.Has("username") && !r.PostForm.Has("email") {
		return services.Submission{}, false
	}
	return services.Submission{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
	}, true
}
