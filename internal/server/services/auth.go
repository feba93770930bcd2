// Package services contains server-side business logic: credential
// authentication, role authorization, and submission validation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/sanitize"
	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
	"github.com/DmytroLysachenko/safe-vault/internal/server/models"
	"github.com/DmytroLysachenko/safe-vault/internal/server/repositories/repomanager"
)

// AuthService verifies credential pairs against the store. A failed
// authentication is a nil user with a nil error: blank input, unknown
// username, and wrong password are deliberately indistinguishable to the
// caller. Store failures and cancellation surface as errors so retry logic
// can tell them apart from a denial.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
	}
}

// Authenticate returns the identity for the credential pair, or nil when the
// pair does not authenticate. The lookup-miss path burns a bcrypt comparison
// against a dummy hash so it costs the same as a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {

	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, nil
	}

	repo := s.repomanager.Users(s.db)

	creds, err := repo.GetCredentialsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.hasher.DummyHash())
			return nil, nil
		}
		return nil, err
	}

	if !s.hasher.Verify(password, creds.PasswordHash) {
		return nil, nil
	}

	user := creds.User
	return &user, nil
}

// Register sanitizes and validates the submitted fields, hashes the password,
// and creates the user. Fields that do not survive sanitization are rejected
// with common.ErrInvalidInput.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {

	name := sanitize.Sanitize(username)
	if len(name) < minUsernameLength {
		return nil, fmt.Errorf("username must be at least %d characters after sanitization: %w",
			minUsernameLength, common.ErrInvalidInput)
	}

	addr, ok := sanitize.SanitizeEmail(email)
	if !ok {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, &models.User{Username: name, Email: addr}, hash)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// SearchUsers returns users whose username contains term, case-insensitively.
// The term is sanitized first; a term that does not survive sanitization
// matches nothing.
func (s *AuthService) SearchUsers(ctx context.Context, term string) ([]models.User, error) {

	term = sanitize.Sanitize(term)
	if term == "" {
		return []models.User{}, nil
	}

	repo := s.repomanager.Users(s.db)

	return repo.SearchByUsername(ctx, term)
}
