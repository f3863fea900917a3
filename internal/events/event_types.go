package events

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketFirstResponse   EventType = "ticket_first_response"
	EventSlaAtRisk             EventType = "sla_at_risk"
	EventSlaBreached           EventType = "sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	OrgID     string      `json:"org_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority         domain.TicketPriority `json:"priority"`
	Title            string                `json:"title"`
	FirstResponseDue *time.Time            `json:"first_response_due,omitempty"`
	ResolutionDue    *time.Time            `json:"resolution_due,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload. Due dates stay frozen at their
// creation-time values, so both are echoed for observability.
type TicketPriorityChangedPayload struct {
	OldPriority      domain.TicketPriority `json:"old_priority"`
	NewPriority      domain.TicketPriority `json:"new_priority"`
	FirstResponseDue *time.Time            `json:"first_response_due,omitempty"`
	ResolutionDue    *time.Time            `json:"resolution_due,omitempty"`
}

// TicketFirstResponsePayload payload.
type TicketFirstResponsePayload struct {
	AgentID     string    `json:"agent_id"`
	RespondedAt time.Time `json:"responded_at"`
}

// SlaTransitionPayload payload for sla_at_risk / sla_breached events.
type SlaTransitionPayload struct {
	Dimension        sla.Dimension `json:"dimension"`
	Status           sla.Status    `json:"status"`
	SecondsRemaining int64         `json:"seconds_remaining"`
	AssigneeID       *string       `json:"assignee_id,omitempty"`
}
