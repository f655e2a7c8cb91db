package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
)

func newGuardFixture(t *testing.T) (*tenancyFixture, *AccessGuard) {
	t.Helper()
	f := newTenancyFixture(t)
	return f, NewAccessGuard(f.service, f.users)
}

func TestAccessGuard_RequirePermission(t *testing.T) {
	t.Run("member with the permission passes", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		u := f.addUser(t, "Alice", "alice@example.com")
		r := f.addRole(t, "worker", role.WithPermissions([]*permission.Permission{perm("cases:read")}))
		orgA := f.addOrg(t, "org-a")
		f.addMembership(t, u, orgA, r)

		tctx, err := guard.RequirePermission(testContext(), u.ID(), "cases:read")
		require.NoError(t, err)
		assert.Equal(t, orgA.ID(), tctx.OrganizationID())
	})

	t.Run("member without the permission is denied", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		u := f.addUser(t, "Alice", "alice@example.com")
		r := f.addRole(t, "worker", role.WithPermissions([]*permission.Permission{perm("cases:read")}))
		orgA := f.addOrg(t, "org-a")
		f.addMembership(t, u, orgA, r)

		_, err := guard.RequirePermission(testContext(), u.ID(), "users:manage")
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("permission change takes effect on the next call", func(t *testing.T) {
		// No caching: the guard re-resolves every call.
		f, guard := newGuardFixture(t)
		u := f.addUser(t, "Alice", "alice@example.com")
		r := f.addRole(t, "worker", role.WithPermissions([]*permission.Permission{perm("cases:read")}))
		orgA := f.addOrg(t, "org-a")
		f.addMembership(t, u, orgA, r)

		_, err := guard.RequirePermission(testContext(), u.ID(), "users:manage")
		require.ErrorIs(t, err, ErrAccessDenied)

		_, err = f.roles.Update(testContext(), r.SetPermissions([]*permission.Permission{
			perm("cases:read"),
			perm("users:manage"),
		}))
		require.NoError(t, err)

		_, err = guard.RequirePermission(testContext(), u.ID(), "users:manage")
		require.NoError(t, err)
	})

	t.Run("super admin bypasses the permission set", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		grantedAt := time.Now()
		u := user.New("Root", mustEmail("root@example.com"), user.WithSuperAdmin(&grantedAt, "seeded"))
		_, err := f.users.Create(testContext(), u)
		require.NoError(t, err)
		r := f.addRole(t, "worker")
		orgA := f.addOrg(t, "org-a")
		f.addMembership(t, u, orgA, r)

		tctx, err := guard.RequirePermission(testContext(), u.ID(), "anything:whatsoever")
		require.NoError(t, err)
		assert.True(t, tctx.IsSuperAdmin())
	})

	t.Run("super admin with zero memberships gets an org-less context", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		grantedAt := time.Now()
		u := user.New("Root", mustEmail("root@example.com"), user.WithSuperAdmin(&grantedAt, "seeded"))
		_, err := f.users.Create(testContext(), u)
		require.NoError(t, err)

		tctx, err := guard.RequirePermission(testContext(), u.ID(), "cases:read")
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, tctx.OrganizationID())
		assert.True(t, tctx.IsSuperAdmin())
	})

	t.Run("regular user with zero memberships gets NoOrganization", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		u := f.addUser(t, "Alice", "alice@example.com")

		_, err := guard.RequirePermission(testContext(), u.ID(), "cases:read")
		require.ErrorIs(t, err, ErrNoOrganization)
	})
}

func TestAccessGuard_RequireSuperAdmin(t *testing.T) {
	t.Run("succeeds independent of memberships", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		grantedAt := time.Now()
		u := user.New("Root", mustEmail("root@example.com"), user.WithSuperAdmin(&grantedAt, "seeded"))
		_, err := f.users.Create(testContext(), u)
		require.NoError(t, err)

		identity, err := guard.RequireSuperAdmin(testContext(), u.ID())
		require.NoError(t, err)
		assert.Equal(t, u.ID(), identity.UserID)
		assert.Equal(t, "root@example.com", identity.Email)
		require.NotNil(t, identity.GrantedAt)
	})

	t.Run("denies regular users even with many memberships", func(t *testing.T) {
		f, guard := newGuardFixture(t)
		u := f.addUser(t, "Alice", "alice@example.com")
		r := f.addRole(t, "admin", role.WithPermissions([]*permission.Permission{perm("users:manage")}))
		f.addMembership(t, u, f.addOrg(t, "org-a"), r)
		f.addMembership(t, u, f.addOrg(t, "org-b"), r)

		_, err := guard.RequireSuperAdmin(testContext(), u.ID())
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("denies unknown users", func(t *testing.T) {
		_, guard := newGuardFixture(t)
		_, err := guard.RequireSuperAdmin(testContext(), uuid.New())
		require.ErrorIs(t, err, ErrAccessDenied)
	})
}
