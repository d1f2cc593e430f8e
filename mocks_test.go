package dashboard_test

import (
	"context"
	"database/sql"
	"sync"

	dashboard "github.com/goliatone/go-dashboard"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// memoryUsers is an in-memory Users store used across the tests
type memoryUsers struct {
	mu      sync.Mutex
	records map[string]*dashboard.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		records: map[string]*dashboard.User{},
	}
}

func (s *memoryUsers) lookup(identifier string) *dashboard.User {
	for _, u := range s.records {
		if u.ID.String() == identifier || u.Username == identifier || u.Email == identifier {
			return u
		}
	}
	return nil
}

func (s *memoryUsers) GetByID(ctx context.Context, id string) (*dashboard.User, error) {
	return s.GetByIdentifier(ctx, id)
}

func (s *memoryUsers) GetByIdentifier(ctx context.Context, identifier string) (*dashboard.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.lookup(identifier); u != nil {
		clone := *u
		return &clone, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"identifier": identifier})
}

func (s *memoryUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string) (*dashboard.User, error) {
	return s.GetByIdentifier(ctx, identifier)
}

func (s *memoryUsers) Register(ctx context.Context, user *dashboard.User) (*dashboard.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(user.Username) != nil || s.lookup(user.Email) != nil {
		return nil, dashboard.ErrDuplicateUser
	}

	if user.Role == "" {
		user.Role = dashboard.RoleUser
	}
	user.IsActive = true
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	clone := *user
	s.records[user.ID.String()] = &clone

	return user, nil
}

func (s *memoryUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *dashboard.User) (*dashboard.User, error) {
	return s.Register(ctx, user)
}

func (s *memoryUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.records[id.String()]
	if !ok {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	u.PasswordHash = passwordHash
	return nil
}

func (s *memoryUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return s.ResetPassword(ctx, id, passwordHash)
}

func (s *memoryUsers) UpdatePhoneNumber(ctx context.Context, id uuid.UUID, phone string) (*dashboard.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.records[id.String()]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	u.Phone = phone
	clone := *u
	return &clone, nil
}

func (s *memoryUsers) UpdatePhoneNumberTx(ctx context.Context, tx bun.IDB, id uuid.UUID, phone string) (*dashboard.User, error) {
	return s.UpdatePhoneNumber(ctx, id, phone)
}

func (s *memoryUsers) List(ctx context.Context, limit, offset int) ([]*dashboard.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*dashboard.User, 0, len(s.records))
	for _, u := range s.records {
		clone := *u
		out = append(out, &clone)
	}

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out, nil
}

var _ dashboard.Users = (*memoryUsers)(nil)

// mockRepoManager wires the memory store behind the RepositoryManager surface
type mockRepoManager struct {
	users dashboard.Users
}

func (m mockRepoManager) Users() dashboard.Users {
	return m.users
}

func (m mockRepoManager) Validate() error {
	return nil
}

func (m mockRepoManager) MustValidate() {}

func (m mockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

var _ dashboard.RepositoryManager = mockRepoManager{}

// MockIdentityProvider implements dashboard.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (dashboard.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(dashboard.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (dashboard.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(dashboard.Identity)
	return identity, args.Error(1)
}

// testIdentity is a fixed Identity for token tests
type testIdentity struct {
	id       string
	username string
	email    string
	role     string
}

func (t testIdentity) ID() string       { return t.id }
func (t testIdentity) Username() string { return t.username }
func (t testIdentity) Email() string    { return t.email }
func (t testIdentity) Role() string     { return t.role }

// testConfig satisfies dashboard.Config for wiring tests
type testConfig struct {
	signingKey      string
	tokenExpiration int
}

func (c testConfig) GetSigningKey() string    { return c.signingKey }
func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string    { return "access_token" }
func (c testConfig) GetTokenExpiration() int {
	if c.tokenExpiration == 0 {
		return 20
	}
	return c.tokenExpiration
}
func (c testConfig) GetTokenLookup() string {
	return "header:Authorization,cookie:access_token"
}
func (c testConfig) GetAuthScheme() string { return "Bearer" }
func (c testConfig) GetIssuer() string     { return "go-dashboard-test" }
func (c testConfig) GetAudience() []string { return nil }
