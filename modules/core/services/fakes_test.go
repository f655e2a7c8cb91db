package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/entities/membership"
	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/eventbus"
)

// nopTx satisfies composables.Tx so services wrapping work in InTx run
// against the in-memory fakes without a database.
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

func mustEmail(s string) internet.Email {
	return internet.MustEmail(s)
}

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserRepository(users ...user.User) *fakeUserRepository {
	r := &fakeUserRepository{users: make(map[uuid.UUID]user.User)}
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
	if _, ok := r.users[u.ID()]; !ok {
		return nil, persistence.ErrUserNotFound
	}
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
	u, ok := r.users[id]
	if !ok {
		return persistence.ErrUserNotFound
	}
	now := time.Now()
	opts := []user.Option{
		user.WithID(u.ID()),
		user.WithLastLoginAt(&now),
		user.WithCreatedAt(u.CreatedAt()),
	}
	if u.IsSuperAdmin() {
		opts = append(opts, user.WithSuperAdmin(u.SuperAdminGrantedAt(), u.SuperAdminNotes()))
	}
	r.users[id] = user.New(u.Name(), u.Email(), opts...)
	return nil
}

type fakeMembershipRepository struct {
	mu          sync.Mutex
	memberships []*membership.Membership
}

func newFakeMembershipRepository(memberships ...*membership.Membership) *fakeMembershipRepository {
	return &fakeMembershipRepository{memberships: memberships}
}

func (r *fakeMembershipRepository) GetByUser(_ context.Context, userID uuid.UUID) ([]*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*membership.Membership
	for _, m := range r.memberships {
		if m.UserID() == userID {
			out = append(out, m)
		}
	}
	// Stored in insertion order; tests insert earliest-created first, which
	// mirrors the repository's created_at ASC ordering.
	return out, nil
}

func (r *fakeMembershipRepository) GetByUserAndOrg(_ context.Context, userID, organizationID uuid.UUID) (*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.UserID() == userID && m.OrganizationID() == organizationID {
			return m, nil
		}
	}
	return nil, persistence.ErrMembershipNotFound
}

func (r *fakeMembershipRepository) Create(_ context.Context, m *membership.Membership) (*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.memberships {
		if existing.UserID() == m.UserID() && existing.OrganizationID() == m.OrganizationID() {
			return nil, persistence.ErrMembershipExists
		}
	}
	r.memberships = append(r.memberships, m)
	return m, nil
}

func (r *fakeMembershipRepository) Delete(_ context.Context, userID, organizationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.memberships {
		if m.UserID() == userID && m.OrganizationID() == organizationID {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}
	return persistence.ErrMembershipNotFound
}

func (r *fakeMembershipRepository) SetPrimary(_ context.Context, userID, organizationID uuid.UUID) error {
	return persistence.ErrMembershipNotFound
}

type fakeOrganizationRepository struct {
	mu            sync.Mutex
	organizations map[uuid.UUID]*organization.Organization
}

func newFakeOrganizationRepository(organizations ...*organization.Organization) *fakeOrganizationRepository {
	r := &fakeOrganizationRepository{organizations: make(map[uuid.UUID]*organization.Organization)}
	for _, o := range organizations {
		r.organizations[o.ID()] = o
	}
	return r
}

func (r *fakeOrganizationRepository) GetByID(_ context.Context, id uuid.UUID) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.organizations[id]
	if !ok {
		return nil, persistence.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *fakeOrganizationRepository) GetByCode(_ context.Context, code string) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.organizations {
		if o.Code() == organization.NormalizeCode(code) {
			return o, nil
		}
	}
	return nil, persistence.ErrOrganizationNotFound
}

func (r *fakeOrganizationRepository) List(_ context.Context) ([]*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*organization.Organization, 0, len(r.organizations))
	for _, o := range r.organizations {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrganizationRepository) Ancestors(_ context.Context, id uuid.UUID) ([]*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*organization.Organization
	current, ok := r.organizations[id]
	if !ok {
		return nil, persistence.ErrOrganizationNotFound
	}
	for current.ParentID() != nil {
		parent, ok := r.organizations[*current.ParentID()]
		if !ok {
			break
		}
		out = append(out, parent)
		current = parent
	}
	return out, nil
}

func (r *fakeOrganizationRepository) Create(_ context.Context, o *organization.Organization) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.organizations {
		if existing.Code() == o.Code() && existing.ID() != o.ID() {
			return nil, persistence.ErrOrganizationExists
		}
	}
	r.organizations[o.ID()] = o
	return o, nil
}

func (r *fakeOrganizationRepository) Update(_ context.Context, o *organization.Organization) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.organizations[o.ID()]; !ok {
		return nil, persistence.ErrOrganizationNotFound
	}
	for _, existing := range r.organizations {
		if existing.Code() == o.Code() && existing.ID() != o.ID() {
			return nil, persistence.ErrOrganizationExists
		}
	}
	r.organizations[o.ID()] = o
	return o, nil
}

type fakeRoleRepository struct {
	mu    sync.Mutex
	roles map[uuid.UUID]role.Role
}

func newFakeRoleRepository(roles ...role.Role) *fakeRoleRepository {
	r := &fakeRoleRepository{roles: make(map[uuid.UUID]role.Role)}
	for _, entity := range roles {
		r.roles[entity.ID()] = entity
	}
	return r
}

func (r *fakeRoleRepository) GetByID(_ context.Context, id uuid.UUID) (role.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entity, ok := r.roles[id]
	if !ok {
		return nil, persistence.ErrRoleNotFound
	}
	return entity, nil
}

func (r *fakeRoleRepository) GetAll(_ context.Context) ([]role.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]role.Role, 0, len(r.roles))
	for _, entity := range r.roles {
		out = append(out, entity)
	}
	return out, nil
}

func (r *fakeRoleRepository) Create(_ context.Context, entity role.Role) (role.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[entity.ID()] = entity
	return entity, nil
}

func (r *fakeRoleRepository) Update(_ context.Context, entity role.Role) (role.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[entity.ID()]; !ok {
		return nil, persistence.ErrRoleNotFound
	}
	r.roles[entity.ID()] = entity
	return entity, nil
}

func (r *fakeRoleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return persistence.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

type fakePointerRepository struct {
	mu       sync.Mutex
	pointers map[uuid.UUID]*tenancy.ActivePointer
	fail     bool
	upserts  int
}

func newFakePointerRepository() *fakePointerRepository {
	return &fakePointerRepository{pointers: make(map[uuid.UUID]*tenancy.ActivePointer)}
}

func (r *fakePointerRepository) Get(_ context.Context, userID uuid.UUID) (*tenancy.ActivePointer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pointers[userID]
	if !ok {
		return nil, persistence.ErrPointerNotFound
	}
	return p, nil
}

func (r *fakePointerRepository) Upsert(_ context.Context, userID, organizationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return persistence.ErrPointerNotFound
	}
	r.upserts++
	r.pointers[userID] = &tenancy.ActivePointer{
		UserID:         userID,
		OrganizationID: organizationID,
		UpdatedAt:      time.Now(),
	}
	return nil
}

func (r *fakePointerRepository) set(userID, organizationID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointers[userID] = &tenancy.ActivePointer{
		UserID:         userID,
		OrganizationID: organizationID,
		UpdatedAt:      time.Now(),
	}
}
