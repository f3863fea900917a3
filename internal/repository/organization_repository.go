package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// OrganizationRepository encapsulates organization persistence.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	UpdateSlaPolicy(ctx context.Context, orgID string, policy domain.SlaPolicy) error
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository instantiates repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, sla_policy, email_templates, is_active, created_at, updated_at
        FROM organizations WHERE id=$1`

	var (
		org          domain.Organization
		policyRaw    []byte
		templatesRaw []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&policyRaw,
		&templatesRaw,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(policyRaw) > 0 {
		if err := json.Unmarshal(policyRaw, &org.SlaPolicy); err != nil {
			return nil, fmt.Errorf("decode sla_policy for org %s: %w", id, err)
		}
	}
	if len(templatesRaw) > 0 {
		if err := json.Unmarshal(templatesRaw, &org.EmailTemplates); err != nil {
			return nil, fmt.Errorf("decode email_templates for org %s: %w", id, err)
		}
	}
	return &org, nil
}

func (r *organizationRepository) UpdateSlaPolicy(ctx context.Context, orgID string, policy domain.SlaPolicy) error {
	encoded, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("encode sla_policy: %w", err)
	}

	const query = `UPDATE organizations SET sla_policy=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, encoded, orgID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
