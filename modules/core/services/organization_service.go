package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/eventbus"
	"github.com/openclerk/casedesk/pkg/serrors"
)

var (
	ErrOrganizationCycle = serrors.NewError(
		"TENANCY_ORGANIZATION_CYCLE",
		"organization parent chain would form a cycle",
		"Errors.OrganizationCycle",
	)
	ErrOrganizationCodeTaken = serrors.NewError(
		"TENANCY_ORGANIZATION_CODE_TAKEN",
		"organization code is already in use",
		"Errors.OrganizationCodeTaken",
	)
)

// OrganizationService is the administrative surface for the tenant forest.
// It owns the acyclicity invariant: a parent assignment is rejected when the
// proposed parent's ancestor chain already contains the organization.
type OrganizationService struct {
	repo      organization.Repository
	publisher eventbus.EventBus
}

func NewOrganizationService(repo organization.Repository, publisher eventbus.EventBus) *OrganizationService {
	return &OrganizationService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrganizationService) List(ctx context.Context) ([]*organization.Organization, error) {
	return s.repo.List(ctx)
}

func (s *OrganizationService) Create(ctx context.Context, entity *organization.Organization) (*organization.Organization, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*organization.Organization, error) {
		if err := s.validateParent(txCtx, entity.ID(), entity.ParentID()); err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if errors.Is(err, persistence.ErrOrganizationExists) {
			return nil, ErrOrganizationCodeTaken
		}
		return created, err
	})
}

func (s *OrganizationService) Update(ctx context.Context, entity *organization.Organization) (*organization.Organization, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*organization.Organization, error) {
		if err := s.validateParent(txCtx, entity.ID(), entity.ParentID()); err != nil {
			return nil, err
		}
		updated, err := s.repo.Update(txCtx, entity)
		if errors.Is(err, persistence.ErrOrganizationExists) {
			return nil, ErrOrganizationCodeTaken
		}
		return updated, err
	})
}

func (s *OrganizationService) Deactivate(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*organization.Organization, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		entity.Deactivate()
		return s.repo.Update(txCtx, entity)
	})
}

func (s *OrganizationService) Activate(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*organization.Organization, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		entity.Activate()
		return s.repo.Update(txCtx, entity)
	})
}

// validateParent walks the proposed parent's ancestor chain and rejects the
// assignment when id appears in it (or when the parent is the node itself).
func (s *OrganizationService) validateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrOrganizationCycle
	}
	if _, err := s.repo.GetByID(ctx, *parentID); err != nil {
		return err
	}
	ancestors, err := s.repo.Ancestors(ctx, *parentID)
	if err != nil {
		return errors.Wrap(err, "failed to load ancestors for cycle check")
	}
	for _, ancestor := range ancestors {
		if ancestor.ID() == id {
			return ErrOrganizationCycle
		}
	}
	return nil
}
