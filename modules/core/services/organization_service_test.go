package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
)

func TestOrganizationService_CycleRejection(t *testing.T) {
	repo := newFakeOrganizationRepository()
	service := NewOrganizationService(repo, quietBus())
	ctx := testContext()

	root, err := service.Create(ctx, organization.New("Root Firm", organization.WithCode("root")))
	require.NoError(t, err)
	rootID := root.ID()

	office, err := service.Create(ctx, organization.New("Office", organization.WithCode("office"), organization.WithParentID(&rootID)))
	require.NoError(t, err)
	officeID := office.ID()

	desk, err := service.Create(ctx, organization.New("Desk", organization.WithCode("desk"), organization.WithParentID(&officeID)))
	require.NoError(t, err)
	deskID := desk.ID()

	t.Run("self parent is rejected", func(t *testing.T) {
		root.SetParentID(&rootID)
		_, err := service.Update(ctx, root)
		require.ErrorIs(t, err, ErrOrganizationCycle)
		root.SetParentID(nil)
	})

	t.Run("descendant as parent is rejected", func(t *testing.T) {
		root.SetParentID(&deskID)
		_, err := service.Update(ctx, root)
		require.ErrorIs(t, err, ErrOrganizationCycle)
		root.SetParentID(nil)
	})

	t.Run("valid reparent passes", func(t *testing.T) {
		desk.SetParentID(&rootID)
		updated, err := service.Update(ctx, desk)
		require.NoError(t, err)
		require.NotNil(t, updated.ParentID())
		assert.Equal(t, rootID, *updated.ParentID())
	})
}

func TestOrganizationService_Codes(t *testing.T) {
	repo := newFakeOrganizationRepository()
	service := NewOrganizationService(repo, quietBus())
	ctx := testContext()

	_, err := service.Create(ctx, organization.New("First", organization.WithCode("  ACME  ")))
	require.NoError(t, err)

	got, err := repo.GetByCode(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Code())

	_, err = service.Create(ctx, organization.New("Second", organization.WithCode("Acme")))
	require.ErrorIs(t, err, ErrOrganizationCodeTaken)
}

func TestOrganizationService_DeactivateActivate(t *testing.T) {
	repo := newFakeOrganizationRepository()
	service := NewOrganizationService(repo, quietBus())
	ctx := testContext()

	org, err := service.Create(ctx, organization.New("Firm", organization.WithCode("firm")))
	require.NoError(t, err)
	require.True(t, org.IsActive())

	deactivated, err := service.Deactivate(ctx, org.ID())
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive())

	reactivated, err := service.Activate(ctx, org.ID())
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive())
}
