package application

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/memory"
)

// fakeIDP records every call and returns the configured errors.
type fakeIDP struct {
	mu sync.Mutex

	calls     []string
	passwords map[string]string

	token  entity.AuthToken
	status entity.ProviderStatus

	createErr, authErr, statusErr  error
	disableErr, enableErr, roleErr error
	resetErr, logoutErr            error

	roles map[string]string
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{
		passwords: map[string]string{},
		roles:     map[string]string{},
		token: entity.AuthToken{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    300,
			TokenType:    "Bearer",
		},
	}
}

func (f *fakeIDP) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeIDP) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeIDP) CreateIdentity(_ context.Context, u *entity.User, password string) error {
	f.record("create")
	if f.createErr != nil {
		return f.createErr
	}
	f.passwords[u.Email.String()] = password
	return nil
}

func (f *fakeIDP) Authenticate(_ context.Context, _, _ string) (entity.AuthToken, error) {
	f.record("authenticate")
	return f.token, f.authErr
}

func (f *fakeIDP) GetStatus(_ context.Context, _ string) (entity.ProviderStatus, error) {
	f.record("status")
	return f.status, f.statusErr
}

func (f *fakeIDP) DisableIdentity(_ context.Context, _ string) error {
	f.record("disable")
	return f.disableErr
}

func (f *fakeIDP) EnableIdentity(_ context.Context, _ string) error {
	f.record("enable")
	return f.enableErr
}

func (f *fakeIDP) SendPasswordReset(_ context.Context, _ string) error {
	f.record("reset")
	return f.resetErr
}

func (f *fakeIDP) UpdateUserRole(_ context.Context, email, role string) error {
	f.record("role")
	if f.roleErr != nil {
		return f.roleErr
	}
	f.roles[email] = role
	return nil
}

func (f *fakeIDP) Logout(_ context.Context, _ string) error {
	f.record("logout")
	return f.logoutErr
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.RoutingKey())
	}
	return out
}

type fakeSyncQueue struct {
	enqueued map[string]bool
}

func (q *fakeSyncQueue) EnqueueAccountState(_ context.Context, email string, enabled bool) error {
	if q.enqueued == nil {
		q.enqueued = map[string]bool{}
	}
	q.enqueued[email] = enabled
	return nil
}

type fakeIndex struct {
	ids     []string
	queries []port.DirectoryQuery
	indexed map[string]int
}

func (i *fakeIndex) Index(_ context.Context, u *entity.User) error {
	if i.indexed == nil {
		i.indexed = map[string]int{}
	}
	i.indexed[u.ID]++
	return nil
}

func (i *fakeIndex) Search(_ context.Context, q port.DirectoryQuery) ([]string, error) {
	i.queries = append(i.queries, q)
	return i.ids, nil
}

type fakeAvatars struct{}

func (fakeAvatars) Upload(_ context.Context, userID, filename, _ string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	return "https://storage.googleapis.com/avatars/" + userID + "/" + filename, nil
}

// failingSaveRepo fails every Save after the store has been seeded.
type failingSaveRepo struct {
	*memory.UserRepository
	err error
}

func (r *failingSaveRepo) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.UserRepository.Save(ctx, u)
}

type fixture struct {
	store  *memory.Store
	users  *memory.UserRepository
	units  *memory.UnitRepository
	idp    *fakeIDP
	pub    *fakePublisher
	queue  *fakeSyncQueue
	svc    *Service
	logged *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := &fixture{
		store:  store,
		users:  memory.NewUserRepository(store),
		units:  memory.NewUnitRepository(store),
		idp:    newFakeIDP(),
		pub:    &fakePublisher{},
		queue:  &fakeSyncQueue{},
		logged: hook,
	}
	f.svc = NewService(f.users, f.units, memory.NewTxManager(store), f.idp, f.pub, logger, WithSyncQueue(f.queue))
	return f
}

func (f *fixture) unit(t *testing.T, tenant, name string) *entity.Unit {
	t.Helper()
	u, err := entity.NewUnit(tenant, name)
	require.NoError(t, err)
	require.NoError(t, f.units.Save(context.Background(), u))
	return u
}

func (f *fixture) user(t *testing.T, email string, role entity.UserRole, tenant string, unit *entity.Unit) *entity.User {
	t.Helper()
	var unitID *string
	if unit != nil {
		unitID = &unit.ID
	}
	u, err := entity.NewUser(entity.NewUserParams{
		FirstName: "First",
		LastName:  email,
		Email:     entity.MustEmail(email),
		TenantID:  tenant,
		UnitID:    unitID,
		Role:      role,
	})
	require.NoError(t, err)
	u.Active = true
	u.EmailVerified = true
	saved, err := f.users.Save(context.Background(), u)
	require.NoError(t, err)
	return saved
}

func strPtr(s string) *string { return &s }
