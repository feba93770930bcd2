// Package users defines the credential store contract consumed by the
// authentication and authorization services, and its Postgres implementation.
package users

import (
	"context"

	"github.com/DmytroLysachenko/safe-vault/internal/server/models"
)

// Repository is the credential store contract. Implementations must use
// bound parameters for every caller-supplied value; the sanitizer pipeline is
// defense in depth, not the injection defense.
type Repository interface {
	Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error)
	GetCredentialsByUsername(ctx context.Context, username string) (*models.Credentials, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	AssignRole(ctx context.Context, userID string, role string) error
	SearchByUsername(ctx context.Context, term string) ([]models.User, error)
}
