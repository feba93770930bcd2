package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/dbx"
	"github.com/DmytroLysachenko/safe-vault/internal/logging"
	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
	"github.com/DmytroLysachenko/safe-vault/internal/server/models"
	usersrepo "github.com/DmytroLysachenko/safe-vault/internal/server/repositories/users"
	"github.com/DmytroLysachenko/safe-vault/internal/server/services"
)

type fakeUsersRepo struct {
	creds map[string]*models.Credentials // keyed by lowercased username
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{creds: make(map[string]*models.Credentials)}
}

func (f *fakeUsersRepo) seed(username, email, passwordHash string, roles ...string) *models.Credentials {
	c := &models.Credentials{
		User: models.User{
			ID:        uuid.NewString(),
			Username:  username,
			Email:     email,
			CreatedAt: time.Now(),
		},
		PasswordHash: passwordHash,
		Roles:        roles,
	}
	f.creds[strings.ToLower(username)] = c
	return c
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	f.creds[strings.ToLower(user.Username)] = &models.Credentials{User: *user, PasswordHash: passwordHash}
	return user, nil
}

func (f *fakeUsersRepo) GetCredentialsByUsername(ctx context.Context, username string) (*models.Credentials, error) {
	c, ok := f.creds[strings.ToLower(username)]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *c
	out.Roles = append([]string(nil), c.Roles...)
	return &out, nil
}

func (f *fakeUsersRepo) GetRoles(ctx context.Context, userID string) ([]string, error) {
	for _, c := range f.creds {
		if c.User.ID == userID {
			return append([]string(nil), c.Roles...), nil
		}
	}
	return []string{}, nil
}

func (f *fakeUsersRepo) AssignRole(ctx context.Context, userID string, role string) error {
	for _, c := range f.creds {
		if c.User.ID == userID {
			c.Roles = append(c.Roles, role)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeUsersRepo) SearchByUsername(ctx context.Context, term string) ([]models.User, error) {
	found := make([]models.User, 0)
	for _, c := range f.creds {
		if strings.Contains(strings.ToLower(c.User.Username), strings.ToLower(term)) {
			found = append(found, c.User)
		}
	}
	return found, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context) error    { return nil }
func (m *fakeRepoManager) Conn() *sql.DB                          { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

type testEnv struct {
	server *Server
	repo   *fakeUsersRepo
	hasher *auth.Hasher
	issuer *auth.TokenIssuer
	mock   sqlmock.Sqlmock
	db     *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hasher, err := auth.NewHasher(auth.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	issuer, err := auth.NewTokenIssuer("test-secret", "safe-vault", "safe-vault-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}

	repo := newFakeUsersRepo()
	rm := &fakeRepoManager{u: repo}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	server := NewServer(":0", logger,
		services.NewAuthService(db, rm, hasher),
		services.NewRoleService(db, rm),
		services.NewSubmissionService(),
		issuer,
	)

	return &testEnv{server: server, repo: repo, hasher: hasher, issuer: issuer, mock: mock, db: db}
}

func (e *testEnv) seedUser(t *testing.T, username, password string, roles ...string) *models.Credentials {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	return e.repo.seed(username, username+"@example.com", hash, roles...)
}

func (e *testEnv) tokenFor(t *testing.T, user models.User, roles ...string) string {
	t.Helper()
	tok, _, err := e.issuer.Issue(user, roles)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return tok
}
