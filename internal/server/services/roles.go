package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/dbx"
	"github.com/DmytroLysachenko/safe-vault/internal/server/repositories/repomanager"
)

// RoleService manages role membership. Assignment is idempotent: repeating it
// with the same user and role leaves the role set unchanged. Read paths treat
// an unknown user as having no roles, so access checks fail closed without
// leaking whether the user exists.
type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager) *RoleService {
	return &RoleService{db: db, repomanager: m}
}

// AssignRole grants role to the named user. A blank username or role is a
// caller input error; an unknown user is common.ErrNotFound. The resolve and
// insert run in one transaction, and the insert itself tolerates a concurrent
// duplicate, so the call is safe to retry.
func (s *RoleService) AssignRole(ctx context.Context, username, role string) error {

	username = strings.TrimSpace(username)
	role = strings.TrimSpace(role)
	if username == "" || role == "" {
		return fmt.Errorf("username and role are required: %w", common.ErrInvalidInput)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		creds, err := repo.GetCredentialsByUsername(ctx, username)
		if err != nil {
			return err
		}

		for _, r := range creds.Roles {
			if strings.EqualFold(r, role) {
				// already assigned
				return nil
			}
		}

		return repo.AssignRole(ctx, creds.User.ID, role)
	})
}

// HasRole reports whether the named user holds role, compared
// case-insensitively. Blank input or an unknown user reads as false with a
// nil error; only store failures surface as errors.
func (s *RoleService) HasRole(ctx context.Context, username, role string) (bool, error) {

	username = strings.TrimSpace(username)
	role = strings.TrimSpace(role)
	if username == "" || role == "" {
		return false, nil
	}

	repo := s.repomanager.Users(s.db)

	creds, err := repo.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, r := range creds.Roles {
		if strings.EqualFold(r, role) {
			return true, nil
		}
	}

	return false, nil
}

// GetRoles returns the role set of the named user. Blank input or an unknown
// user yields an empty set with a nil error.
func (s *RoleService) GetRoles(ctx context.Context, username string) ([]string, error) {

	username = strings.TrimSpace(username)
	if username == "" {
		return []string{}, nil
	}

	repo := s.repomanager.Users(s.db)

	creds, err := repo.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	return creds.Roles, nil
}
