package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	OrgID       string                `json:"org_id"`
	RequesterID string                `json:"requester_id"`
	AssigneeID  *string               `json:"assignee_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Tags        []string              `json:"tags"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID               string                `json:"id"`
	ExternalKey      string                `json:"external_key"`
	OrgID            string                `json:"org_id"`
	AssigneeID       *string               `json:"assignee_id"`
	Title            string                `json:"title"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	Tags             []string              `json:"tags"`
	FirstResponseDue *time.Time            `json:"first_response_due"`
	ResolutionDue    *time.Time            `json:"resolution_due"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info plus its live SLA state.
type TicketDetailResponse struct {
	TicketSummary
	Description      string             `json:"description"`
	FirstRespondedAt *time.Time         `json:"first_responded_at"`
	ClosedAt         *time.Time         `json:"closed_at"`
	Sla              *TicketSlaResponse `json:"sla,omitempty"`
}

// SlaDimensionResponse is the display-ready state of one SLA clock.
type SlaDimensionResponse struct {
	Applicable       bool   `json:"applicable"`
	Status           string `json:"status,omitempty"`
	SecondsRemaining int64  `json:"seconds_remaining,omitempty"`
	Remaining        string `json:"remaining,omitempty"`
}

// TicketSlaResponse combines both dimensions.
type TicketSlaResponse struct {
	EvaluatedAt time.Time            `json:"evaluated_at"`
	Response    SlaDimensionResponse `json:"response"`
	Resolution  SlaDimensionResponse `json:"resolution"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:               t.ID,
		ExternalKey:      t.ExternalKey,
		OrgID:            t.OrgID,
		AssigneeID:       t.AssigneeID,
		Title:            t.Title,
		Status:           t.Status,
		Priority:         t.Priority,
		Tags:             t.Tags,
		FirstResponseDue: t.FirstResponseDue,
		ResolutionDue:    t.ResolutionDue,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket with its evaluation.
func NewTicketDetail(t *domain.Ticket, eval sla.TicketEvaluation, evaluatedAt time.Time) TicketDetailResponse {
	return TicketDetailResponse{
		TicketSummary:    NewTicketSummary(t),
		Description:      t.Description,
		FirstRespondedAt: t.FirstRespondedAt,
		ClosedAt:         t.ClosedAt,
		Sla:              NewTicketSla(eval, evaluatedAt),
	}
}

// NewTicketSla maps an evaluation.
func NewTicketSla(eval sla.TicketEvaluation, evaluatedAt time.Time) *TicketSlaResponse {
	return &TicketSlaResponse{
		EvaluatedAt: evaluatedAt,
		Response:    newSlaDimension(eval.Response),
		Resolution:  newSlaDimension(eval.Resolution),
	}
}

func newSlaDimension(eval *sla.Evaluation) SlaDimensionResponse {
	if eval == nil {
		return SlaDimensionResponse{Applicable: false}
	}
	return SlaDimensionResponse{
		Applicable:       true,
		Status:           string(eval.Status),
		SecondsRemaining: eval.SecondsRemaining,
		Remaining:        sla.FormatRemaining(eval.SecondsRemaining),
	}
}
