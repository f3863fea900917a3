package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util"
)

// TicketService coordinates ticket intake and lifecycle updates.
type TicketService struct {
	tickets    repository.TicketRepository
	orgs       repository.OrganizationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	OrgRepo    repository.OrganizationRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	OrgID       string
	RequesterID string
	AssigneeID  *string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Tags        []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		orgs:       deps.OrgRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateTicket creates a ticket, resolving SLA due dates from the owning
// organization's policy. A policy missing targets for the ticket's priority
// falls back to the system default for that priority.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	org, err := s.orgs.GetByID(ctx, input.OrgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"org_id": input.OrgID})
		}
		return nil, apperrors.MapError(err)
	}
	if !org.IsActive {
		return nil, apperrors.NewValidationError("organization inactive", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	createdAt := s.now()
	dues, err := sla.ResolveDueDates(createdAt, priority, org.SlaPolicy)
	if errors.Is(err, sla.ErrIncompletePolicy) {
		s.logger.Warn("org policy missing priority targets, using system default",
			zap.String("org_id", org.ID),
			zap.String("priority", string(priority)))
		dues, err = sla.ResolveDueDates(createdAt, priority, sla.DefaultPolicy())
	}
	if err != nil {
		if errors.Is(err, sla.ErrInvalidPriority) {
			return nil, apperrors.NewInvalidPriority(string(priority))
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		ExternalKey:      generateTicketKey(),
		OrgID:            org.ID,
		RequesterID:      input.RequesterID,
		AssigneeID:       input.AssigneeID,
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Status:           domain.TicketStatusNew,
		Priority:         priority,
		Tags:             input.Tags,
		FirstResponseDue: &dues.FirstResponse,
		ResolutionDue:    &dues.Resolution,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		OrgID:    ticket.OrgID,
		Payload: events.TicketCreatedPayload{
			Priority:         ticket.Priority,
			Title:            ticket.Title,
			FirstResponseDue: ticket.FirstResponseDue,
			ResolutionDue:    ticket.ResolutionDue,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// EvaluateTicket fetches a ticket and computes its live SLA state at now.
func (s *TicketService) EvaluateTicket(ctx context.Context, ticketID string, now time.Time) (*domain.Ticket, sla.TicketEvaluation, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, sla.TicketEvaluation{}, err
	}
	return ticket, sla.EvaluateTicket(ticket, now), nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// RecordFirstResponse stamps the first agent reply on a ticket. The stamp is
// written at most once; repeat calls are no-ops so retried delivery of the
// same reply event stays harmless.
func (s *TicketService) RecordFirstResponse(ctx context.Context, agentID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.FirstRespondedAt != nil {
		return ticket, nil
	}

	respondedAt := s.now()
	ticket.FirstRespondedAt = &respondedAt
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketFirstResponse,
		TicketID: ticket.ID,
		OrgID:    ticket.OrgID,
		Payload: events.TicketFirstResponsePayload{
			AgentID:     agentID,
			RespondedAt: respondedAt,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority. Due dates stay frozen at their
// creation-time values; the divergence is logged so operators can see it.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewInvalidPriority(string(newPriority))
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldPriority := ticket.Priority
	if oldPriority == newPriority {
		return ticket, nil
	}
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket priority changed; SLA due dates remain frozen",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_priority", string(oldPriority)),
		zap.String("new_priority", string(newPriority)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		OrgID:    ticket.OrgID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority:      oldPriority,
			NewPriority:      newPriority,
			FirstResponseDue: ticket.FirstResponseDue,
			ResolutionDue:    ticket.ResolutionDue,
		},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket through its lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusClosed, domain.TicketStatusTerminated:
		closedAt := s.now()
		ticket.ClosedAt = &closedAt
	default:
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		OrgID:    ticket.OrgID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers reported errors",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusActive, domain.TicketStatusPending, domain.TicketStatusTerminated},
	domain.TicketStatusActive:     {domain.TicketStatusPending, domain.TicketStatusOnHold, domain.TicketStatusClosed, domain.TicketStatusTerminated},
	domain.TicketStatusPending:    {domain.TicketStatusActive, domain.TicketStatusOnHold, domain.TicketStatusClosed, domain.TicketStatusTerminated},
	domain.TicketStatusOnHold:     {domain.TicketStatusActive, domain.TicketStatusClosed, domain.TicketStatusTerminated},
	domain.TicketStatusClosed:     {},
	domain.TicketStatusTerminated: {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
