package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/dbx"
	"github.com/DmytroLysachenko/safe-vault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	user.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, passwordHash).Scan(&user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetCredentialsByUsername(ctx context.Context, username string) (*models.Credentials, error) {
	query :=
		`SELECT id, username, email, created_at, password_hash FROM users
		 WHERE username = $1
		 `

	creds := &models.Credentials{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&creds.User.ID, &creds.User.Username, &creds.User.Email,
		&creds.User.CreatedAt, &creds.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	roles, err := r.GetRoles(ctx, creds.User.ID)
	if err != nil {
		return nil, err
	}
	creds.Roles = roles

	return creds, nil
}

func (r *PostgresRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	query :=
		`SELECT role_name FROM user_roles
		 WHERE user_id = $1
		 ORDER BY role_name
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

// AssignRole inserts the role membership if it is not already present. The
// ON CONFLICT clause makes the insert itself idempotent, so concurrent
// duplicate requests cannot race the authorizer's pre-check into an error.
func (r *PostgresRepository) AssignRole(ctx context.Context, userID string, role string) error {
	query :=
		`INSERT INTO user_roles (user_id, role_name)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SearchByUsername(ctx context.Context, term string) ([]models.User, error) {
	query :=
		`SELECT id, username, email, created_at FROM users
		 WHERE username ILIKE '%' || $1 || '%'
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	found := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		found = append(found, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return found, nil
}
