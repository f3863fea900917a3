package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util"
)

// OrganizationService manages organization SLA policy administration.
type OrganizationService struct {
	orgs repository.OrganizationRepository
}

// NewOrganizationService constructs the service.
func NewOrganizationService(orgs repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

// GetSlaPolicy returns the organization's configured SLA policy.
func (s *OrganizationService) GetSlaPolicy(ctx context.Context, orgID string) (domain.SlaPolicy, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"org_id": orgID})
		}
		return nil, apperrors.MapError(err)
	}
	return org.SlaPolicy, nil
}

// UpdateSlaPolicy replaces the organization's SLA policy after exhaustive
// validation: every priority level must carry targets and each resolution
// target must be at least its response target. Existing tickets keep the due
// dates resolved at their creation.
func (s *OrganizationService) UpdateSlaPolicy(ctx context.Context, orgID string, policy domain.SlaPolicy) error {
	if err := sla.ValidatePolicy(policy); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.orgs.UpdateSlaPolicy(ctx, orgID, policy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("organization", map[string]any{"org_id": orgID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
