package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/modules/superadmin/domain/entities"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/eventbus"
)

type nopTx struct{}

func (nopTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (nopTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (nopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func testContext() context.Context {
	return composables.WithTx(context.Background(), nopTx{})
}

func quietBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

type fakeUserRepository struct {
	mu         sync.Mutex
	users      map[uuid.UUID]user.User
	lastLogins map[uuid.UUID]int
}

func newFakeUserRepository(users ...user.User) *fakeUserRepository {
	r := &fakeUserRepository{
		users:      make(map[uuid.UUID]user.User),
		lastLogins: make(map[uuid.UUID]int),
	}
	for _, u := range users {
		r.users[u.ID()] = u
	}
	return r
}

func (r *fakeUserRepository) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, persistence.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email internet.Email) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, persistence.ErrUserNotFound
}

func (r *fakeUserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return u, nil
}

func (r *fakeUserRepository) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return u, nil
}

func (r *fakeUserRepository) Elevate(_ context.Context, id uuid.UUID, notes string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, persistence.ErrUserNotFound
	}
	if u.IsSuperAdmin() {
		return false, nil
	}
	grantedAt := time.Now()
	r.users[id] = user.New(
		u.Name(),
		u.Email(),
		user.WithID(u.ID()),
		user.WithSuperAdmin(&grantedAt, notes),
		user.WithCreatedAt(u.CreatedAt()),
	)
	return true, nil
}

func (r *fakeUserRepository) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return persistence.ErrUserNotFound
	}
	r.lastLogins[id]++
	return nil
}

type fakeAuditRepository struct {
	mu      sync.Mutex
	entries []*entities.ElevationAuditLog
	fail    bool
}

func (r *fakeAuditRepository) Append(_ context.Context, entry *entities.ElevationAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("audit store unavailable")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepository) ListByActor(_ context.Context, actorID uuid.UUID, limit, offset int) ([]*entities.ElevationAuditLog, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ElevationAuditLog
	for _, e := range r.entries {
		if e.ActorID != nil && *e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func newElevationFixture(allowed []string, users ...user.User) (*ElevationService, *fakeUserRepository, *fakeAuditRepository) {
	userRepo := newFakeUserRepository(users...)
	auditRepo := &fakeAuditRepository{}
	service := NewElevationService(userRepo, NewAuditService(auditRepo), quietBus(), allowed)
	return service, userRepo, auditRepo
}

func TestElevationService_CheckAndElevate(t *testing.T) {
	t.Run("allow-listed user is elevated on first login", func(t *testing.T) {
		u := user.New("Root", internet.MustEmail("root@example.com"))
		service, userRepo, auditRepo := newElevationFixture([]string{"root@example.com"}, u)

		elevated, err := service.CheckAndElevate(testContext(), "root@example.com", u.ID())
		require.NoError(t, err)
		assert.True(t, elevated)

		got, err := userRepo.GetByID(testContext(), u.ID())
		require.NoError(t, err)
		assert.True(t, got.IsSuperAdmin())
		require.NotNil(t, got.SuperAdminGrantedAt())
		require.Len(t, auditRepo.entries, 1)
		assert.Equal(t, "superadmin.elevated", auditRepo.entries[0].Action)
	})

	t.Run("match is case-insensitive and trimmed", func(t *testing.T) {
		u := user.New("Root", internet.MustEmail("root@example.com"))
		service, userRepo, _ := newElevationFixture([]string{"  Root@Example.COM  "}, u)

		elevated, err := service.CheckAndElevate(testContext(), "  ROOT@example.com ", u.ID())
		require.NoError(t, err)
		assert.True(t, elevated)

		got, err := userRepo.GetByID(testContext(), u.ID())
		require.NoError(t, err)
		assert.True(t, got.IsSuperAdmin())
	})

	t.Run("non-listed user is never elevated", func(t *testing.T) {
		u := user.New("Alice", internet.MustEmail("alice@example.com"))
		service, userRepo, auditRepo := newElevationFixture([]string{"root@example.com"}, u)

		elevated, err := service.CheckAndElevate(testContext(), "alice@example.com", u.ID())
		require.NoError(t, err)
		assert.False(t, elevated)

		got, err := userRepo.GetByID(testContext(), u.ID())
		require.NoError(t, err)
		assert.False(t, got.IsSuperAdmin())
		assert.Empty(t, auditRepo.entries)
	})

	t.Run("second call is idempotent with a single grant timestamp", func(t *testing.T) {
		u := user.New("Root", internet.MustEmail("root@example.com"))
		service, userRepo, auditRepo := newElevationFixture([]string{"root@example.com"}, u)

		elevated, err := service.CheckAndElevate(testContext(), "root@example.com", u.ID())
		require.NoError(t, err)
		require.True(t, elevated)

		first, err := userRepo.GetByID(testContext(), u.ID())
		require.NoError(t, err)
		firstGrantedAt := first.SuperAdminGrantedAt()
		require.NotNil(t, firstGrantedAt)

		elevated, err = service.CheckAndElevate(testContext(), "root@example.com", u.ID())
		require.NoError(t, err)
		assert.True(t, elevated)

		second, err := userRepo.GetByID(testContext(), u.ID())
		require.NoError(t, err)
		require.NotNil(t, second.SuperAdminGrantedAt())
		assert.Equal(t, *firstGrantedAt, *second.SuperAdminGrantedAt())
		assert.Len(t, auditRepo.entries, 1)
		assert.Equal(t, 1, userRepo.lastLogins[u.ID()])
	})

	t.Run("concurrent logins elevate exactly once", func(t *testing.T) {
		u := user.New("Root", internet.MustEmail("root@example.com"))
		service, _, auditRepo := newElevationFixture([]string{"root@example.com"}, u)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				elevated, err := service.CheckAndElevate(testContext(), "root@example.com", u.ID())
				assert.NoError(t, err)
				assert.True(t, elevated)
			}()
		}
		wg.Wait()
		assert.Len(t, auditRepo.entries, 1)
	})

	t.Run("internal failure reports no elevation and an error the caller discards", func(t *testing.T) {
		u := user.New("Root", internet.MustEmail("root@example.com"))
		service, _, auditRepo := newElevationFixture([]string{"root@example.com"}, u)
		auditRepo.fail = true

		// The error branch is what the login flow discards; the decision
		// itself reported no elevation.
		elevated, err := service.CheckAndElevate(testContext(), "root@example.com", u.ID())
		require.Error(t, err)
		assert.False(t, elevated)
	})

	t.Run("unknown user errors without granting", func(t *testing.T) {
		service, _, auditRepo := newElevationFixture([]string{"root@example.com"})

		elevated, err := service.CheckAndElevate(testContext(), "root@example.com", uuid.New())
		require.Error(t, err)
		assert.False(t, elevated)
		assert.Empty(t, auditRepo.entries)
	})
}
