package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util"
)

// OrganizationsHandler manages SLA policy administration endpoints.
type OrganizationsHandler struct {
	service *service.OrganizationService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(orgService *service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{service: orgService}
}

// GetSlaPolicy GET /organizations/:id/sla-policy.
func (h *OrganizationsHandler) GetSlaPolicy(c *fiber.Ctx) error {
	policy, err := h.service.GetSlaPolicy(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSlaPolicyPayload(policy)})
}

// UpdateSlaPolicy PUT /organizations/:id/sla-policy.
func (h *OrganizationsHandler) UpdateSlaPolicy(c *fiber.Ctx) error {
	var payload dto.SlaPolicyPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(payload) == 0 {
		return apperrors.NewValidationError("policy required", nil)
	}
	if err := h.service.UpdateSlaPolicy(c.Context(), c.Params("id"), payload.ToDomain()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payload})
}
